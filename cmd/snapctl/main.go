// cmd/snapctl/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/repository/jsonfile"
	"github.com/EAS-COD-System/eas-tracker/internal/snapshot"
)

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory holding the live datastore",
		Value:   "./data",
		EnvVars: []string{"APP_DATA_DIR"},
	}
}

func newSnapshotDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "snapshot-dir",
		Usage:   "Directory holding snapshot artifacts",
		Value:   "./data/snapshots",
		EnvVars: []string{"APP_SNAPSHOT_DIR"},
	}
}

func newDataFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-file",
		Usage:   "Datastore file name inside data-dir",
		Value:   "db.json",
		EnvVars: []string{"APP_DATA_FILE"},
	}
}

func openStores(c *cli.Context) (*snapshot.Store, error) {
	store, err := jsonfile.Open(filepath.Join(c.String("data-dir"), c.String("data-file")))
	if err != nil {
		return nil, fmt.Errorf("failed to open datastore: %w", err)
	}
	snapStore, err := snapshot.Open(c.String("snapshot-dir"), store, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return snapStore, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "snapctl",
		Usage: "Manage datastore snapshots from the command line",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Take a snapshot of the live datastore",
				Flags: []cli.Flag{
					newDataDirFlag(),
					newDataFileFlag(),
					newSnapshotDirFlag(),
					&cli.StringFlag{
						Name:  "label",
						Usage: "Optional label embedded in the snapshot id",
					},
				},
				Action: runCreate,
			},
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Flags: []cli.Flag{
					newDataDirFlag(),
					newDataFileFlag(),
					newSnapshotDirFlag(),
				},
				Action: runList,
			},
			{
				Name:  "restore",
				Usage: "Restore the datastore from a snapshot",
				Flags: []cli.Flag{
					newDataDirFlag(),
					newDataFileFlag(),
					newSnapshotDirFlag(),
					&cli.StringFlag{
						Name:  "id",
						Usage: "Snapshot id to restore",
					},
					&cli.DurationFlag{
						Name:  "within",
						Usage: "Restore the newest snapshot taken inside this trailing window, e.g. 1h",
					},
				},
				Action: runRestore,
			},
			{
				Name:  "delete",
				Usage: "Delete a snapshot",
				Flags: []cli.Flag{
					newDataDirFlag(),
					newDataFileFlag(),
					newSnapshotDirFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Snapshot id to delete",
						Required: true,
					},
				},
				Action: runDelete,
			},
			{
				Name:  "prune",
				Usage: "Remove old snapshots by retention policy",
				Flags: []cli.Flag{
					newDataDirFlag(),
					newDataFileFlag(),
					newSnapshotDirFlag(),
					&cli.IntFlag{
						Name:    "keep-count",
						Usage:   "Always keep this many newest snapshots",
						Value:   30,
						EnvVars: []string{"SNAPSHOT_KEEP_COUNT"},
					},
					&cli.IntFlag{
						Name:    "keep-days",
						Usage:   "Always keep snapshots newer than this many days",
						Value:   14,
						EnvVars: []string{"SNAPSHOT_KEEP_DAYS"},
					},
				},
				Action: runPrune,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCreate(c *cli.Context) error {
	snapStore, err := openStores(c)
	if err != nil {
		return err
	}
	meta, err := snapStore.Create(c.Context, c.String("label"), domain.SnapshotManual)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%d bytes)\n", meta.ID, meta.Size)
	return nil
}

func runList(c *cli.Context) error {
	snapStore, err := openStores(c)
	if err != nil {
		return err
	}
	snaps := snapStore.List(c.Context)
	if len(snaps) == 0 {
		fmt.Println("no snapshots")
		return nil
	}
	for _, s := range snaps {
		fmt.Printf("%s\t%s\t%d bytes\t%s\n", s.ID, s.Kind, s.Size, s.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runRestore(c *cli.Context) error {
	snapStore, err := openStores(c)
	if err != nil {
		return err
	}

	var meta *domain.Snapshot
	if within := c.Duration("within"); within > 0 {
		meta, err = snapStore.RestoreWithin(c.Context, within)
	} else if id := c.String("id"); id != "" {
		meta, err = snapStore.Restore(c.Context, id)
	} else {
		return fmt.Errorf("either --id or --within must be provided")
	}
	if err != nil {
		return err
	}
	fmt.Printf("restored from %s\n", meta.ID)
	return nil
}

func runDelete(c *cli.Context) error {
	snapStore, err := openStores(c)
	if err != nil {
		return err
	}
	if err := snapStore.Delete(c.Context, c.String("id")); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func runPrune(c *cli.Context) error {
	snapStore, err := openStores(c)
	if err != nil {
		return err
	}
	removed, err := snapStore.Prune(c.Context, snapshot.Policy{
		KeepCount: c.Int("keep-count"),
		KeepDays:  c.Int("keep-days"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("pruned %d snapshots\n", removed)
	return nil
}
