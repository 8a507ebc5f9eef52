package common

import (
	"context"
	"fmt"

	"talentscan/internal/errors"
)

// CreateInputFunc defines how to create the operation input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// ScanOperationFunc is a generic function signature for any engine operation
// driven from the CLI.
type ScanOperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunScanCommand encapsulates the common logic for file-based CLI commands:
// read and validate the inputs, run the operation, format and write the
// result.
func RunScanCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	maxFileSize int64,
	args []string,
	createInput CreateInputFunc[Input],
	operation ScanOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger, maxFileSize)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
