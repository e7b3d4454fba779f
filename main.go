package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/xackery/replyquote/tlog"
)

// Version is the build version
var Version string

func main() {
	w, err := os.Create("replyquote.log")
	if err != nil {
		fmt.Println(err)
		pause()
		os.Exit(1)
	}
	defer w.Close()
	tlog.Init(w, os.Stdout)

	if Version == "" {
		Version = "1.x.x EXPERIMENTAL"
	}

	err = newRootCmd().Execute()
	if err != nil {
		tlog.Errorf("run failed with error: %s", err)
		pause()
		tlog.Sync()
		os.Exit(1)
	}
	tlog.Sync()
	os.Exit(0)
}

// pause keeps the console open on windows, where replyquote is usually started by double click
func pause() {
	if runtime.GOOS != "windows" {
		return
	}
	option := ""
	fmt.Println("press a key then enter to exit.")
	fmt.Scan(&option)
}
