package main

import (
	"os"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/colors"
	clierrors "github.com/cristianoliveira/tab-recall/internal/errors"
)

func main() {
	os.Exit(run(cmd.Execute))
}

// run executes the command tree and maps its result to an exit code.
func run(execute func() error) int {
	colors.StructuredInfo("startup", "main", "started", nil, "", nil)
	err := execute()
	if err != nil {
		colors.StructuredError("startup", "main", "failed", err, "", nil)
	} else {
		colors.StructuredInfo("startup", "main", "completed", nil, "", nil)
	}
	return clierrors.NewDefaultCLIHandler().Handle(err)
}
