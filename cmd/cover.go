package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfscan/internal/covercache"
)

// Run looks the ISBN up, downloads its cover and saves the requested
// rendition under the covers directory.
func (c *CoverCmd) Run() error {
	a := newApp()
	defer a.close()

	ctx := context.Background()
	rec, err := lookupBook(ctx, a.service, c.ISBN)
	if err != nil {
		return err
	}
	if rec.CoverURL == "" {
		return fmt.Errorf("no cover available for ISBN %s", rec.ISBN)
	}

	variant := covercache.Thumbnail
	if c.Full {
		variant = covercache.Full
	}

	fetcher := covercache.NewFetcher(nil, covercache.New(viper.GetInt("covers.capacity")))
	data, err := fetcher.Get(ctx, rec.CoverURL, rec.ISBN, variant)
	if err != nil {
		return fmt.Errorf("failed to download cover for ISBN %s: %w", rec.ISBN, err)
	}

	path, err := fetcher.Save(viper.GetString("covers.dir"), rec.ISBN, data)
	if err != nil {
		return err
	}

	fmt.Printf("Saved cover to %s\n", path)
	return nil
}
