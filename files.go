package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fileboxhq/filebox-go/internal/api"
	"github.com/fileboxhq/filebox-go/internal/catalog"
)

// ls command flags.
var (
	flagLsName    string
	flagLsOwner   string
	flagLsCompany string
	flagLsType    string
	flagLsFrom    string
	flagLsTo      string
	flagLsMinSize int64
	flagLsMaxSize int64
	flagLsSort    string
	flagLsOrder   string
	flagLsCached  bool
)

// put command flags.
var flagPutAsVersion string

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored files",
		Args:  cobra.NoArgs,
		RunE:  runLs,
	}

	cmd.Flags().StringVar(&flagLsName, "name", "", "filter by file name")
	cmd.Flags().StringVar(&flagLsOwner, "owner", "", "filter by uploader username")
	cmd.Flags().StringVar(&flagLsCompany, "company", "", "filter by company")
	cmd.Flags().StringVar(&flagLsType, "type", "", "filter by content type (e.g. application/pdf)")
	cmd.Flags().StringVar(&flagLsFrom, "from", "", "filter by upload date, lower bound (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagLsTo, "to", "", "filter by upload date, upper bound (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&flagLsMinSize, "min-size", 0, "filter by minimum size in bytes")
	cmd.Flags().Int64Var(&flagLsMaxSize, "max-size", 0, "filter by maximum size in bytes")
	cmd.Flags().StringVar(&flagLsSort, "sort", "", "sort key: date or size")
	cmd.Flags().StringVar(&flagLsOrder, "order", "", "sort order: asc or desc")
	cmd.Flags().BoolVar(&flagLsCached, "cached", false, "serve the listing from the local catalog (offline)")

	return cmd
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <file>...",
		Short: "Upload files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPut,
	}

	cmd.Flags().StringVar(&flagPutAsVersion, "as-version", "", "upload as a new version of the given file ID (single file only)")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file-id> [local-path]",
		Short: "Download a file ('-' writes to stdout)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <file-id>",
		Short: "List the version history of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runVersions,
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}
}

// openCatalog opens the local catalog, degrading to nil on failure: the
// cache is a convenience, never a reason to fail a listing.
func openCatalog(ctx context.Context, env *appEnv) *catalog.Catalog {
	cat, err := catalog.Open(ctx, env.cfg.CatalogPath, env.logger)
	if err != nil {
		env.logger.Warn("opening catalog failed, continuing without cache", "error", err.Error())
		return nil
	}

	return cat
}

func lsOptions() api.ListOptions {
	return api.ListOptions{
		FileName: flagLsName,
		Username: flagLsOwner,
		Company:  flagLsCompany,
		FileType: flagLsType,
		DateFrom: flagLsFrom,
		DateTo:   flagLsTo,
		MinSize:  flagLsMinSize,
		MaxSize:  flagLsMaxSize,
		SortBy:   flagLsSort,
		Order:    flagLsOrder,
	}
}

func runLs(_ *cobra.Command, _ []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if flagLsCached {
		cat := openCatalog(ctx, env)
		if cat == nil {
			return fmt.Errorf("local catalog unavailable")
		}
		defer cat.Close()

		files, listErr := cat.List(ctx)
		if listErr != nil {
			return listErr
		}

		return printFiles(files)
	}

	if err := env.requireLogin(); err != nil {
		return err
	}

	opts := lsOptions()

	files, err := env.client.List(ctx, opts)
	if err != nil {
		return err
	}

	// Refresh the catalog in passing; a full unfiltered listing also
	// prunes rows the server no longer reports.
	if cat := openCatalog(ctx, env); cat != nil {
		if cacheErr := cat.Replace(ctx, files, opts.IsZero()); cacheErr != nil {
			env.logger.Warn("refreshing catalog failed", "error", cacheErr.Error())
		}

		cat.Close()
	}

	return printFiles(files)
}

func printFiles(files []api.File) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(files)
	}

	if len(files) == 0 {
		statusf("No files.\n")
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.ID,
			f.FileName,
			formatSize(f.FileSize),
			f.ContentType,
			f.UploaderUsername,
			formatTime(f.UploadDate),
		})
	}

	printTable(os.Stdout, []string{"ID", "NAME", "SIZE", "TYPE", "OWNER", "UPLOADED"}, rows)

	return nil
}

func runPut(_ *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	if err := env.requireLogin(); err != nil {
		return err
	}

	if flagPutAsVersion != "" {
		if len(args) != 1 {
			return fmt.Errorf("--as-version uploads exactly one file, got %d", len(args))
		}

		return putVersion(context.Background(), env, flagPutAsVersion, args[0])
	}

	// Uploads are independent fire-and-forget requests; they may complete
	// in any order. The group bounds concurrency and reports the first
	// failure after every in-flight upload has finished.
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(env.cfg.UploadConcurrency)

	for _, localPath := range args {
		g.Go(func() error {
			f, openErr := os.Open(localPath)
			if openErr != nil {
				// Nothing readable, nothing sent.
				return fmt.Errorf("opening %s: %w", localPath, openErr)
			}
			defer f.Close()

			file, upErr := env.client.Upload(ctx, filepath.Base(localPath), f)
			if upErr != nil {
				return fmt.Errorf("uploading %s: %w", localPath, upErr)
			}

			fmt.Printf("Uploaded %s (%s, %s)\n", file.FileName, file.ID, formatSize(file.FileSize))

			return nil
		})
	}

	return g.Wait()
}

func putVersion(ctx context.Context, env *appEnv, fileID, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	version, err := env.client.UploadVersion(ctx, fileID, filepath.Base(localPath), f)
	if err != nil {
		return fmt.Errorf("uploading version of %s: %w", fileID, err)
	}

	fmt.Printf("Uploaded version %d of %s (%s)\n", version.Version, fileID, formatSize(version.FileSize))

	return nil
}

func runGet(_ *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	if err := env.requireLogin(); err != nil {
		return err
	}

	fileID := args[0]
	ctx := context.Background()

	if len(args) == 2 && args[1] == "-" {
		_, err := env.client.Download(ctx, fileID, os.Stdout)
		return err
	}

	localPath := fileID
	if len(args) == 2 {
		localPath = args[1]
	}

	return downloadToFile(ctx, env, fileID, localPath)
}

// downloadToFile streams the download to a partial file and renames it
// into place only after the full body arrived, so an interrupted transfer
// never leaves a truncated file at the final path.
func downloadToFile(ctx context.Context, env *appEnv, fileID, localPath string) error {
	partial := localPath + ".partial"

	out, err := os.OpenFile(partial, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", partial, err)
	}

	n, dlErr := env.client.Download(ctx, fileID, out)

	closeErr := out.Close()

	if dlErr != nil {
		_ = os.Remove(partial)
		return dlErr
	}

	if closeErr != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("closing %s: %w", partial, closeErr)
	}

	if err := os.Rename(partial, localPath); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("finalizing %s: %w", localPath, err)
	}

	statusf("Downloaded %s (%s)\n", localPath, formatSize(n))

	return nil
}

func runVersions(_ *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	if err := env.requireLogin(); err != nil {
		return err
	}

	versions, err := env.client.Versions(context.Background(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(versions)
	}

	if len(versions) == 0 {
		statusf("No versions.\n")
		return nil
	}

	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []string{
			strconv.Itoa(v.Version),
			v.FileName,
			formatSize(v.FileSize),
			v.UploaderUsername,
			formatTime(v.UploadDate),
			v.ID,
		})
	}

	printTable(os.Stdout, []string{"VERSION", "NAME", "SIZE", "UPLOADER", "UPLOADED", "ID"}, rows)

	return nil
}

func runRm(_ *cobra.Command, args []string) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}

	if err := env.requireLogin(); err != nil {
		return err
	}

	fileID := args[0]
	ctx := context.Background()

	if err := env.client.Delete(ctx, fileID); err != nil {
		return err
	}

	if cat := openCatalog(ctx, env); cat != nil {
		if cacheErr := cat.Delete(ctx, fileID); cacheErr != nil {
			env.logger.Warn("removing file from catalog failed", "error", cacheErr.Error())
		}

		cat.Close()
	}

	statusf("Deleted %s.\n", fileID)

	return nil
}
