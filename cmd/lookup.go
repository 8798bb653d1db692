package cmd

import (
	"context"
)

// Run resolves a single ISBN and prints the record.
func (l *LookupCmd) Run() error {
	a := newApp()
	defer a.close()

	rec, err := lookupBook(context.Background(), a.service, l.ISBN)
	if err != nil {
		return err
	}

	printRecord(rec)
	return nil
}
