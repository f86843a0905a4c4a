package main

import (
	"context"
	"fmt"
	"os"
	"time"

	hgcs "github.com/go-mercurial/cmdserver"
)

func main() {
	dir, _ := os.MkdirTemp("", "repo")
	os.Mkdir(dir+"/.hg", 0o755)

	scriptDir, _ := os.MkdirTemp("", "fakehg")
	scriptPath := scriptDir + "/hg"
	os.WriteFile(scriptPath, []byte("#!/bin/sh\nexec \"$HG_TEST_BINARY\" -test.run=TestHelperProcess\n"), 0o755)

	env := map[string]string{
		"HG_TEST_BINARY":         "/tmp/cmdserver.test",
		"GO_WANT_HELPER_PROCESS": "1",
		"HG_FAKE_SCRIPT":         `{"status":{"stdout":"M file1.txt\n? file2.txt\n","stderr":"","exit":0}}`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := hgcs.Open(ctx, dir, hgcs.ClientConfig{HgPath: scriptPath, Env: env})
	fmt.Println("open", c, err)
	if err != nil {
		return
	}
	defer c.Close()
	res, err := c.Status(hgcs.StatusOptions{})
	fmt.Println("status", res, err)
}
