/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	"github.com/josephgoksu/smarttask/cmd"
	"github.com/josephgoksu/smarttask/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
