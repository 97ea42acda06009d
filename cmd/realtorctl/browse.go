package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/cli"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

const browseMenu = "[t]ype [p]rice [c]ounty [s]ub-county [/]search [a]pply [r]eset [l]ist [q]uit"

func runBrowse(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("browse")
	pageSize := fs.Int("page-size", services.DefaultPageSize, "listings loaded per session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	browser := services.NewListingBrowser(a.api, *pageSize)
	if err := browser.Load(ctx); err != nil {
		return err
	}

	for {
		snap := browser.Snapshot()
		printBrowseStatus(a, snap)

		choice, err := a.prompt.Line(browseMenu, "l")
		if errors.Is(err, cli.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(choice) {
		case "t":
			names := make([]string, len(entities.PropertyTypes))
			for i, t := range entities.PropertyTypes {
				names[i] = string(t)
			}
			idx, err := a.prompt.Choose("Property type", names)
			if err != nil {
				return nil
			}
			if idx < 0 {
				browser.SetPropertyType(entities.All)
			} else {
				browser.SetPropertyType(entities.PropertyTypes[idx])
			}

		case "p":
			labels := make([]string, len(entities.PriceBrackets))
			for i, b := range entities.PriceBrackets {
				labels[i] = b.Label
			}
			idx, err := a.prompt.Choose("Price range", labels)
			if err != nil {
				return nil
			}
			key := entities.All
			if idx >= 0 {
				key = entities.PriceBrackets[idx].Key
			}
			if err := browser.SetPriceRange(key); err != nil {
				cli.PrintError(a.out, err)
			}

		case "c":
			names := make([]string, len(snap.Counties))
			for i, c := range snap.Counties {
				names[i] = c.Name
			}
			idx, err := a.prompt.Choose("County", names)
			if err != nil {
				return nil
			}
			if idx < 0 {
				browser.SelectCounty(ctx, entities.AnyID())
			} else {
				browser.SelectCounty(ctx, entities.OnlyID(snap.Counties[idx].ID))
			}

		case "s":
			if snap.Selector == services.NoCountySelected {
				fmt.Fprintln(a.out, "Select a county first.")
				continue
			}
			names := make([]string, len(snap.SubCounties))
			for i, sc := range snap.SubCounties {
				names[i] = sc.Name
			}
			idx, err := a.prompt.Choose("Sub-county", names)
			if err != nil {
				return nil
			}
			selection := entities.AnyID()
			if idx >= 0 {
				selection = entities.OnlyID(snap.SubCounties[idx].ID)
			}
			if !browser.SelectSubCounty(selection) {
				fmt.Fprintln(a.out, "Sub-counties are still loading, try again.")
			}

		case "/":
			text, err := a.prompt.Line("Search", snap.Filters.SearchText)
			if err != nil {
				return nil
			}
			if err := browser.SetSearchText(ctx, text); err != nil {
				cli.PrintError(a.out, err)
			}

		case "a":
			browser.Apply()

		case "r":
			browser.ResetFilters()

		case "l":
			if err := cli.PrintProperties(a.out, snap.Visible); err != nil {
				return err
			}

		case "q":
			return nil

		default:
			fmt.Fprintln(a.out, "Unknown choice.")
		}
	}
}

func printBrowseStatus(a *app, snap services.BrowseSnapshot) {
	f := snap.Filters
	county, subCounty := f.County.String(), f.SubCounty.String()
	if id, ok := f.County.ID(); ok {
		for _, c := range snap.Counties {
			if c.ID == id {
				county = c.Name
			}
		}
	}
	if id, ok := f.SubCounty.ID(); ok {
		for _, sc := range snap.SubCounties {
			if sc.ID == id {
				subCounty = sc.Name
			}
		}
	}
	fmt.Fprintf(a.out, "\ntype=%s price=%s county=%s sub-county=%s", f.PropertyType, f.PriceRange, county, subCounty)
	if f.SearchText != "" {
		fmt.Fprintf(a.out, " search=%q", f.SearchText)
	}
	if f.IsDefault() {
		fmt.Fprint(a.out, " (no filters)")
	}
	if snap.Pending {
		fmt.Fprint(a.out, " (not applied)")
	}
	fmt.Fprintf(a.out, "\n%d of %d listings\n", len(snap.Visible), len(snap.Properties))
	if snap.Error != "" {
		fmt.Fprintf(a.out, "error: %s\n", snap.Error)
	}
}
