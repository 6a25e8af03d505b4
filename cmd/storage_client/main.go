package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/stowage/stowage/cmd/flags"
	"github.com/stowage/stowage/common"
	"github.com/stowage/stowage/interfaces"
	"github.com/stowage/stowage/storage"
)

var flagInput = &cli.StringFlag{
	Name:  "input",
	Value: "-",
	Usage: "file to read content from, - for stdin",
}
var flagOverwrite = &cli.BoolFlag{
	Name:  "overwrite",
	Value: false,
	Usage: "replace the file if it already exists",
}
var flagContentType = &cli.StringFlag{
	Name:  "content-type",
	Usage: "content type stored as object metadata on backends that support it",
}
var flagSeparator = &cli.StringFlag{
	Name:  "separator",
	Value: storage.DefaultSeparator,
	Usage: "separator inserted between existing content and new data",
}
var flagRecursive = &cli.BoolFlag{
	Name:    "recursive",
	Aliases: []string{"r"},
	Value:   false,
	Usage:   "list the full subtree instead of a single level",
}
var flagDirs = &cli.BoolFlag{
	Name:  "dirs",
	Value: false,
	Usage: "list directories instead of files",
}

// errOperationFailed reports a boolean-failure outcome: the backend took the
// request but the operation did not take effect.
var errOperationFailed = errors.New("operation failed")

func main() {
	app := &cli.App{
		Name:    "stowage",
		Usage:   "Work with files on a stowage storage backend",
		Version: common.Version,
		Flags: []cli.Flag{
			flags.StorageURIFlag,
			flags.LogJsonFlag,
			flags.LogDebugFlag,
			flags.LogUidFlag,
			flags.LogServiceFlagFn("stowage-cli"),
		},
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "print file content to stdout",
				ArgsUsage: "path",
				Action:    runRead,
			},
			{
				Name:      "write",
				Usage:     "store content at a path",
				ArgsUsage: "path",
				Flags:     []cli.Flag{flagInput, flagOverwrite, flagContentType},
				Action:    runWrite,
			},
			{
				Name:      "append",
				Usage:     "append content after the existing file content",
				ArgsUsage: "path",
				Flags:     []cli.Flag{flagInput, flagSeparator},
				Action:    runAppend,
			},
			{
				Name:      "prepend",
				Usage:     "prepend content before the existing file content",
				ArgsUsage: "path",
				Flags:     []cli.Flag{flagInput, flagSeparator},
				Action:    runPrepend,
			},
			{
				Name:      "rm",
				Usage:     "delete a file",
				ArgsUsage: "path",
				Action:    runDelete,
			},
			{
				Name:      "stat",
				Usage:     "show file metadata",
				ArgsUsage: "path",
				Action:    runStat,
			},
			{
				Name:      "ls",
				Usage:     "list files or directories",
				ArgsUsage: "[dir]",
				Flags:     []cli.Flag{flagRecursive, flagDirs},
				Action:    runList,
			},
			{
				Name:      "mkdir",
				Usage:     "create a directory, including parents",
				ArgsUsage: "path",
				Action:    runMkdir,
			},
			{
				Name:      "rmdir",
				Usage:     "delete an empty directory",
				ArgsUsage: "path",
				Action:    runRmdir,
			},
			{
				Name:      "cp",
				Usage:     "copy a file, replacing the destination",
				ArgsUsage: "from to",
				Action:    runCopy,
			},
			{
				Name:      "mv",
				Usage:     "move a file",
				ArgsUsage: "from to",
				Action:    runMove,
			},
			{
				Name:      "url",
				Usage:     "print the backend-resolved location of a file",
				ArgsUsage: "path",
				Action:    runURL,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openStorage resolves the backend named by --storage-uri. The logger goes
// to stderr so command output on stdout stays clean.
func openStorage(cCtx *cli.Context) (*storage.Storage, error) {
	logger := flags.SetupLogger(cCtx)
	factory := storage.NewStorageBackendFactory(logger)
	return factory.NewStorageFor(interfaces.StorageBackendLocation(cCtx.String(flags.StorageURIFlag.Name)))
}

// pathArg returns the positional argument at index i or an error naming it.
func pathArg(cCtx *cli.Context, i int, name string) (string, error) {
	arg := cCtx.Args().Get(i)
	if arg == "" {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return arg, nil
}

// readInput loads the content for write-style commands from --input.
func readInput(cCtx *cli.Context) ([]byte, error) {
	input := cCtx.String(flagInput.Name)
	if input == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(input)
}

func runRead(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	content, err := store.Read(cCtx.Context, path)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(content)
	return err
}

func runWrite(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	content, err := readInput(cCtx)
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	config := interfaces.WriteConfig{Overwrite: cCtx.Bool(flagOverwrite.Name)}
	if contentType := cCtx.String(flagContentType.Name); contentType != "" {
		config.Metadata = map[string]string{"Content-Type": contentType}
	}

	ok, err := store.Write(cCtx.Context, path, content, config)
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}

	fmt.Printf("wrote %s (%s)\n", path, humanize.Bytes(uint64(len(content))))
	return nil
}

func runMerge(cCtx *cli.Context, merge func(store *storage.Storage, path string, content []byte, separator string) (bool, error)) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	content, err := readInput(cCtx)
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	ok, err := merge(store, path, content, cCtx.String(flagSeparator.Name))
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}

	fmt.Printf("updated %s\n", path)
	return nil
}

func runAppend(cCtx *cli.Context) error {
	return runMerge(cCtx, func(store *storage.Storage, path string, content []byte, separator string) (bool, error) {
		return store.Append(cCtx.Context, path, content, separator)
	})
}

func runPrepend(cCtx *cli.Context) error {
	return runMerge(cCtx, func(store *storage.Storage, path string, content []byte, separator string) (bool, error) {
		return store.Prepend(cCtx.Context, path, content, separator)
	})
}

func runDelete(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	ok, err := store.Delete(cCtx.Context, path)
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}

	fmt.Printf("deleted %s\n", path)
	return nil
}

func runStat(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	ctx := cCtx.Context
	missing, err := store.Missing(ctx, path)
	if err != nil {
		return err
	}
	if missing {
		return fmt.Errorf("file not found: %s", path)
	}

	size, err := store.Size(ctx, path)
	if err != nil {
		return err
	}
	modified, err := store.LastModified(ctx, path)
	if err != nil {
		return err
	}
	location, err := store.Path(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("Path:     %s\n", path)
	fmt.Printf("Backend:  %s\n", store.Backend().Name())
	fmt.Printf("Size:     %s\n", humanize.Bytes(uint64(size)))
	fmt.Printf("Modified: %s\n", time.Unix(modified, 0).UTC().Format(time.RFC3339))
	fmt.Printf("Location: %s\n", location)
	return nil
}

func runList(cCtx *cli.Context) error {
	dir := cCtx.Args().Get(0)
	recursive := cCtx.Bool(flagRecursive.Name)

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	var entries []string
	if cCtx.Bool(flagDirs.Name) {
		entries, err = store.Directories(cCtx.Context, dir, recursive)
	} else {
		entries, err = store.Files(cCtx.Context, dir, recursive)
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Println(entry)
	}
	return nil
}

func runMkdir(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	ok, err := store.CreateDirectory(cCtx.Context, path)
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}

	fmt.Printf("created %s\n", path)
	return nil
}

func runRmdir(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	ok, err := store.DeleteDirectory(cCtx.Context, path)
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}

	fmt.Printf("removed %s\n", path)
	return nil
}

func runTransfer(cCtx *cli.Context, verb string,
	transfer func(store *storage.Storage, from, to string) (bool, error)) error {
	from, err := pathArg(cCtx, 0, "from")
	if err != nil {
		return err
	}
	to, err := pathArg(cCtx, 1, "to")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	ok, err := transfer(store, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return errOperationFailed
	}

	fmt.Printf("%s %s -> %s\n", verb, from, to)
	return nil
}

func runCopy(cCtx *cli.Context) error {
	return runTransfer(cCtx, "copied", func(store *storage.Storage, from, to string) (bool, error) {
		return store.Copy(cCtx.Context, from, to)
	})
}

func runMove(cCtx *cli.Context) error {
	return runTransfer(cCtx, "moved", func(store *storage.Storage, from, to string) (bool, error) {
		return store.Move(cCtx.Context, from, to)
	})
}

func runURL(cCtx *cli.Context) error {
	path, err := pathArg(cCtx, 0, "path")
	if err != nil {
		return err
	}

	store, err := openStorage(cCtx)
	if err != nil {
		return err
	}

	location, err := store.Path(cCtx.Context, path)
	if err != nil {
		return err
	}

	fmt.Println(location)
	return nil
}
