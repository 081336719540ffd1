package util

import (
	"log"
	"os"
)

var Log = log.New(os.Stdout, "[tagd] ", log.Lshortfile|log.Ldate|log.Ltime)
