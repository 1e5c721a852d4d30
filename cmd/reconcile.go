/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/internal/iocatalog"
	"github.com/gnames/gnrecon/internal/iocol"
	"github.com/gnames/gnrecon/internal/iodca"
	"github.com/gnames/gnrecon/internal/iohttp"
	"github.com/gnames/gnrecon/internal/iokew"
	"github.com/gnames/gnrecon/internal/iorhs"
	"github.com/gnames/gnrecon/internal/iosources"
	"github.com/gnames/gnrecon/pkg/config"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/reconciler"
	"github.com/spf13/cobra"
)

// getReconcileCmd returns the reconcile command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getReconcileCmd() *cobra.Command {
	var (
		propose    bool
		existing   bool
		orchid     bool
		commonName string
		parentage  bool
		cacheAge   int
		noFuzzy    bool
	)

	reconcileCmd := &cobra.Command{
		Use:   "reconcile <genus>",
		Short: "Reconcile one genus against the taxonomic checklists",
		Long: `Reconcile a genus of the gardening catalog against the
authoritative taxonomic checklists.

This command:
  1. Fetches every record of the genus from the catalog
  2. Refreshes the local reference snapshot when it is stale
  3. Classifies each botanical name against the reference, falling
     back to the secondary checklist and a spellcheck match
  4. Plans merges for names that converge on one accepted name
  5. Scans the reference for accepted names the catalog is missing
  6. Prints the resulting report, one coded line per finding

Without --propose the run is review-only: nothing is sent to the
catalog. With it, every mutation is filed as a catalog proposal.

Exit codes: 0 clean, 2 changes pending review, 1 failure.

Examples:
  # Review a genus
  gnrecon reconcile Geranium

  # File the proposals, setting the common name
  gnrecon reconcile Geranium --propose --common-name "Cranesbill"

  # Orchid genus with register lookups and parentage checks
  gnrecon reconcile Cymbidium -o --parentage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runReconcile(cmd, args[0])
			if err != nil && !errors.Is(err, gnrecon.ErrChangesPending) {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	reconcileCmd.Flags().BoolVarP(
		&propose, "propose", "p", false,
		"submit the mutations as catalog proposals",
	)
	reconcileCmd.Flags().BoolVarP(
		&existing, "existing", "e", false,
		"approve matching pending new-plant proposals",
	)
	reconcileCmd.Flags().BoolVarP(
		&orchid, "orchid-extensions", "o", false,
		"enable hybrid register lookups, common name 'Orchid'",
	)
	reconcileCmd.Flags().StringVarP(
		&commonName, "common-name", "n", "",
		"common name applied to all members of the genus",
	)
	reconcileCmd.Flags().BoolVar(
		&parentage, "parentage", false,
		"verify parentage fields of registered hybrids",
	)
	reconcileCmd.Flags().IntVar(
		&cacheAge, "cache-age", 0,
		"override snapshot max age in days",
	)
	reconcileCmd.Flags().BoolVar(
		&noFuzzy, "no-fuzzy", false,
		"disable the spellcheck fallback",
	)
	reconcileCmd.MarkFlagsMutuallyExclusive(
		"orchid-extensions", "common-name",
	)

	return reconcileCmd
}

func runReconcile(cmd *cobra.Command, genus string) error {
	ctx := context.Background()

	// Build options from explicitly set flags
	var recOpts []config.Option

	if cmd.Flags().Changed("propose") {
		b, _ := cmd.Flags().GetBool("propose")
		recOpts = append(recOpts, config.OptPropose(b))
	}
	if cmd.Flags().Changed("existing") {
		b, _ := cmd.Flags().GetBool("existing")
		recOpts = append(recOpts, config.OptExisting(b))
	}
	if cmd.Flags().Changed("orchid-extensions") {
		b, _ := cmd.Flags().GetBool("orchid-extensions")
		recOpts = append(recOpts, config.OptOrchidExtensions(b))
	}
	if cmd.Flags().Changed("common-name") {
		s, _ := cmd.Flags().GetString("common-name")
		recOpts = append(recOpts, config.OptCommonName(s))
	}
	if cmd.Flags().Changed("parentage") {
		b, _ := cmd.Flags().GetBool("parentage")
		recOpts = append(recOpts, config.OptParentageCheck(b))
	}
	if cmd.Flags().Changed("cache-age") {
		i, _ := cmd.Flags().GetInt("cache-age")
		recOpts = append(recOpts, config.OptCacheMaxAgeDays(i))
	}
	if cmd.Flags().Changed("no-fuzzy") {
		b, _ := cmd.Flags().GetBool("no-fuzzy")
		recOpts = append(recOpts, config.OptFuzzyDisabled(b))
	}

	if len(recOpts) > 0 {
		cfg.Update(recOpts)
	}

	ep, err := iosources.New(cfg).Load()
	if err != nil {
		return err
	}

	client := iohttp.New(cfg.HTTP.TimeoutSec, cfg.HTTP.RetryDelaySec)

	snap := iodca.New(*cfg, client, ep.Reference.ArchiveURL)
	ref, err := iocol.New(ctx, snap, client, ep.Reference.SearchURL, genus)
	if err != nil {
		return err
	}
	defer closeSource(ref)

	var sec gnrecon.SecondarySource
	if ep.Secondary.SearchURL != "" {
		sec = iokew.New(client, ep.Secondary.SearchURL)
	}

	var reg gnrecon.HybridRegister
	if cfg.Reconcile.OrchidExtensions {
		if ep.Register.SearchURL == "" {
			gn.Warn(
				"No hybrid register endpoint configured, " +
					"skipping register lookups",
			)
		} else {
			reg, err = iorhs.New(
				cfg.HomeDir, client, ep.Register.SearchURL,
			)
			if err != nil {
				return err
			}
			defer closeSource(reg)
		}
	}

	cat := iocatalog.New(client, ep.Catalog.BaseURL)

	rec := reconciler.New(*cfg, ref, sec, reg, cat, os.Stdout)
	summary, err := rec.Reconcile(ctx, genus)
	if err != nil {
		return err
	}

	if summary.ChangesPending {
		return gnrecon.ErrChangesPending
	}
	return nil
}

// closeSource closes collaborators that hold database handles.
func closeSource(v any) {
	if c, ok := v.(io.Closer); ok {
		c.Close()
	}
}
