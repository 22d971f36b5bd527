package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "ctrecon: unrecovered error: %v\n", r)
			code = 3
		}
	}()

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "ctrecon: %v\n", err)
	return exitCode(err)
}

// exitCode maps an error returned from the reconstruction run to the
// process exit status: 1 for a rejected configuration, 2 for a
// runtime/I/O/reconstruction failure, 3 for anything unrecognised.
func exitCode(err error) int {
	var cfgErr *reconerr.ConfigurationError
	if errors.As(err, &cfgErr) {
		return 1
	}

	var inputErr *reconerr.InputDataError
	var calibErr *reconerr.CalibrationError
	var numErr *reconerr.NumericalError
	var workerErr *reconerr.WorkerError
	var ioErr *reconerr.IOError
	switch {
	case errors.As(err, &inputErr),
		errors.As(err, &calibErr),
		errors.As(err, &numErr),
		errors.As(err, &workerErr),
		errors.As(err, &ioErr):
		return 2
	default:
		return 3
	}
}
