package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lepinkainen/shelfscan/internal/scanner"
)

var scanInput io.Reader = os.Stdin

// Run reads decoder payloads from stdin, one per line, and resolves the
// first one that cleans up into a valid ISBN. Repeated deliveries of
// the same barcode are collapsed into a single lookup.
func (s *ScanCmd) Run() error {
	a := newApp()
	defer a.close()

	var accepted string
	filter := scanner.New(func(id string) { accepted = id })
	if err := filter.Start(); err != nil {
		return err
	}

	reader := bufio.NewScanner(scanInput)
	for reader.Scan() {
		filter.Frame([]string{reader.Text()}, nil)
		if _, ok := filter.Accepted(); ok {
			break
		}
	}
	if err := reader.Err(); err != nil {
		filter.Fail(err)
		return fmt.Errorf("failed to read scan input: %w", err)
	}

	if accepted == "" {
		return fmt.Errorf("no valid ISBN in scan input")
	}

	fmt.Printf("Scanned ISBN %s\n", accepted)
	rec, err := lookupBook(context.Background(), a.service, accepted)
	if err != nil {
		return err
	}

	printRecord(rec)
	return nil
}
