// Command permalink converts between share URLs and JSON state snapshots on
// the command line.
//
//	permalink -decode 'https://example/app?l=paris&t=s44we8'
//	permalink -encode state.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antoine-paris/moontracker-sub002/internal/share"
	"github.com/antoine-paris/moontracker-sub002/locations"
	"github.com/antoine-paris/moontracker-sub002/model"
	"github.com/antoine-paris/moontracker-sub002/optics"
	"github.com/antoine-paris/moontracker-sub002/urlstate"
)

func main() {
	decode := flag.String("decode", "", "Share URL (or bare query string) to decode into JSON state")
	encode := flag.String("encode", "", "Path to a JSON state file to turn into a share URL; '-' reads stdin")
	locationsPath := flag.String("locations", "", "Optional location directory CSV for id resolution")
	devicesPath := flag.String("devices", "", "Optional optics catalog JSON for device resolution")
	baseURL := flag.String("base-url", "", "Base URL prepended to encoded links")
	flag.Parse()

	if (*decode == "") == (*encode == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -decode or -encode is required")
		flag.Usage()
		os.Exit(2)
	}

	dir := loadDirectory(*locationsPath)
	catalog := loadCatalog(*devicesPath)

	var err error
	if *decode != "" {
		err = runDecode(*decode, dir, catalog)
	} else {
		err = runEncode(*encode, *baseURL, dir)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDecode(raw string, dir *locations.Directory, catalog *optics.Catalog) error {
	// A bare query string is accepted too.
	if !strings.Contains(raw, "?") && strings.Contains(raw, "=") {
		raw = "?" + raw
	}

	st := model.Default()
	opts := urlstate.ParseOptions{}
	if dir != nil {
		opts.Locations = dir
	}
	if catalog != nil {
		opts.Devices = catalog
	}
	if err := urlstate.ParseURL(raw, opts, urlstate.StateSetters(&st)); err != nil {
		return fmt.Errorf("decode %q: %w", raw, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(share.PayloadFromState(st))
}

func runEncode(path, baseURL string, dir *locations.Directory) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var doc share.StatePayload
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("parse state JSON: %w", err)
	}

	opts := urlstate.BuildOptions{BaseURL: baseURL}
	if dir != nil {
		opts.Locations = dir
	}
	fmt.Println(urlstate.BuildShareURL(doc.ToState(), opts))
	return nil
}

func loadDirectory(path string) *locations.Directory {
	if path == "" {
		return nil
	}
	dir := locations.NewDirectory()
	if _, err := dir.LoadFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return dir
}

func loadCatalog(path string) *optics.Catalog {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}
	defer f.Close()
	catalog, err := optics.LoadJSON(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}
	return catalog
}
