// dbloader imports TinyMUSH flatfiles into the bolt world store. It can
// also inspect a loaded database, run validation, apply the safe fixes,
// and export a database back to flatfile form.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/crystal-mush/mushmatch/pkg/archive"
	"github.com/crystal-mush/mushmatch/pkg/boltstore"
	"github.com/crystal-mush/mushmatch/pkg/flatfile"
	"github.com/crystal-mush/mushmatch/pkg/gamedb"
	"github.com/crystal-mush/mushmatch/pkg/validate"
)

func main() {
	flatPath := flag.String("flat", "", "Path to TinyMUSH flatfile to load")
	boltPath := flag.String("bolt", "", "Path to bolt world database (load when -flat absent, save when present)")
	exportPath := flag.String("export", "", "Write the loaded database back out as a flatfile")
	runValidate := flag.Bool("validate", false, "Run validation checks")
	fix := flag.Bool("fix", false, "Apply all safe fixes for validation findings")
	reportPath := flag.String("report", "", "Write a JSON validation report to this path (implies -validate)")
	showObj := flag.Int("obj", -1, "Show details for a specific object by dbref")
	archiveDir := flag.String("archive", "", "Create a world archive in this directory (requires -bolt)")
	flag.Parse()

	if *flatPath == "" && *boltPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: dbloader -flat <flatfile> [-bolt <out.db>] [options]")
		fmt.Fprintln(os.Stderr, "       dbloader -bolt <world.db> [options]")
		fmt.Fprintln(os.Stderr, "  -export <path>  Write the database back out as a flatfile")
		fmt.Fprintln(os.Stderr, "  -validate       Run validation checks")
		fmt.Fprintln(os.Stderr, "  -fix            Apply all safe fixes before saving")
		fmt.Fprintln(os.Stderr, "  -report <path>  Write a JSON validation report")
		fmt.Fprintln(os.Stderr, "  -obj <dbref>    Show object details")
		fmt.Fprintln(os.Stderr, "  -archive <dir>  Create a checksummed world archive")
		os.Exit(1)
	}

	db, err := loadDatabase(*flatPath, *boltPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	printSummary(db)

	if *runValidate || *fix || *reportPath != "" {
		fmt.Println()
		if err := runValidation(db, *fix, *reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}

	if *showObj >= 0 {
		fmt.Println()
		printObject(db, gamedb.DBRef(*showObj))
	}

	if *flatPath != "" && *boltPath != "" {
		start := time.Now()
		store, err := boltstore.Open(*boltPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: open bolt store: %v\n", err)
			os.Exit(1)
		}
		if err := store.SaveAll(db); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "ERROR: save world: %v\n", err)
			os.Exit(1)
		}
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: close bolt store: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nSaved %d objects to %s in %v\n", len(db.Objects), *boltPath, time.Since(start))
	}

	if *exportPath != "" {
		if err := flatfile.Save(*exportPath, db); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: export flatfile: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d objects to %s\n", len(db.Objects), *exportPath)
	}

	if *archiveDir != "" {
		if *boltPath == "" {
			fmt.Fprintln(os.Stderr, "ERROR: -archive requires -bolt")
			os.Exit(1)
		}
		path, err := createArchive(db, *boltPath, *exportPath, *archiveDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Archived world to %s\n", path)
	}
}

// createArchive snapshots the bolt world and bundles it, with any flatfile
// export, into a checksummed tar.gz.
func createArchive(db *gamedb.Database, boltPath, exportPath, archiveDir string) (string, error) {
	store, err := boltstore.Open(boltPath)
	if err != nil {
		return "", fmt.Errorf("open bolt store: %w", err)
	}
	defer store.Close()

	name := "world"
	if obj, ok := db.Objects[0]; ok && obj.Name != "" {
		name = obj.Name
	}
	return archive.Create(archive.Params{
		SnapshotFunc: store.Snapshot,
		FlatfilePath: exportPath,
		ArchiveDir:   archiveDir,
		WorldName:    name,
		ObjectCount:  len(db.Objects),
	})
}

// loadDatabase reads the world from a flatfile when given, otherwise from
// an existing bolt store.
func loadDatabase(flatPath, boltPath string) (*gamedb.Database, error) {
	if flatPath != "" {
		fmt.Printf("Loading flatfile: %s\n", flatPath)
		start := time.Now()
		db, err := flatfile.Load(flatPath)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Loaded in %v\n\n", time.Since(start))
		return db, nil
	}

	fmt.Printf("Loading bolt store: %s\n", boltPath)
	start := time.Now()
	store, err := boltstore.Open(boltPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	db, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded in %v\n\n", time.Since(start))
	return db, nil
}

func printSummary(db *gamedb.Database) {
	fmt.Println("=== DATABASE SUMMARY ===")
	fmt.Printf("Version:        %d\n", db.Version)
	fmt.Printf("Declared size:  %d objects\n", db.Size)
	fmt.Printf("Loaded objects: %d\n", len(db.Objects))
	fmt.Printf("Attr defs:      %d user-defined attributes\n", len(db.AttrNames))
	fmt.Printf("Next attr num:  %d\n", db.NextAttr)

	typeCounts := make(map[gamedb.ObjectType]int)
	totalAttrs := 0
	goingCount := 0
	for _, obj := range db.Objects {
		typeCounts[obj.ObjType()]++
		totalAttrs += len(obj.Attrs)
		if obj.IsGoing() {
			goingCount++
		}
	}

	fmt.Println("\n--- Object Counts by Type ---")
	types := []gamedb.ObjectType{
		gamedb.TypeRoom, gamedb.TypeThing, gamedb.TypeExit,
		gamedb.TypePlayer, gamedb.TypeZone, gamedb.TypeGarbage,
	}
	for _, t := range types {
		if c, ok := typeCounts[t]; ok {
			fmt.Printf("  %-10s %d\n", t.String(), c)
		}
	}
	fmt.Printf("  %-10s %d\n", "GOING", goingCount)
	fmt.Printf("\nTotal attributes across all objects: %d\n", totalAttrs)
}

func runValidation(db *gamedb.Database, fix bool, reportPath string) error {
	fmt.Println("=== VALIDATION ===")
	v := validate.New(db)
	findings := v.Run()

	for _, f := range findings {
		fmt.Printf("%s: %s\n", strings.ToUpper(f.Severity.String()), f.Description)
	}

	if fix {
		fixed := 0
		for _, cat := range []validate.Category{validate.CatIntegrityError, validate.CatIntegrityWarn, validate.CatMatching} {
			fixed += v.ApplyAll(cat)
		}
		fmt.Printf("Applied %d fixes\n", fixed)
	}

	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := validate.GenerateReport(v).WriteJSON(f); err != nil {
			f.Close()
			return fmt.Errorf("write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	summary := v.Summary()
	fmt.Printf("\nValidation complete: %d errors, %d warnings, %d matching findings\n",
		summary[validate.CatIntegrityError], summary[validate.CatIntegrityWarn], summary[validate.CatMatching])
	return nil
}

func printObject(db *gamedb.Database, ref gamedb.DBRef) {
	obj, ok := db.Objects[ref]
	if !ok {
		fmt.Printf("Object #%d not found in database\n", ref)
		return
	}

	fmt.Printf("=== OBJECT #%d ===\n", ref)
	fmt.Printf("Name:       %s\n", obj.Name)
	fmt.Printf("Type:       %s\n", obj.ObjType())
	fmt.Printf("Location:   #%d\n", obj.Location)
	fmt.Printf("Zone:       #%d\n", obj.Zone)
	fmt.Printf("Contents:   #%d\n", obj.Contents)
	fmt.Printf("Exits:      #%d\n", obj.Exits)
	fmt.Printf("Link/Home:  #%d\n", obj.Link)
	fmt.Printf("Next:       #%d\n", obj.Next)
	fmt.Printf("Owner:      #%d\n", obj.Owner)
	fmt.Printf("Parent:     #%d\n", obj.Parent)
	fmt.Printf("Flags:      0x%08x 0x%08x 0x%08x\n", obj.Flags[0], obj.Flags[1], obj.Flags[2])
	fmt.Printf("Powers:     0x%08x 0x%08x\n", obj.Powers[0], obj.Powers[1])
	fmt.Printf("Going:      %v\n", obj.IsGoing())
	fmt.Printf("Flag names: %s\n", flagNames(obj))

	fmt.Printf("\n--- Attributes (%d) ---\n", len(obj.Attrs))
	for _, attr := range obj.Attrs {
		name := db.GetAttrName(attr.Number)
		if name == "" {
			name = fmt.Sprintf("ATTR_%d", attr.Number)
		}
		val := attr.Value
		if len(val) > 120 {
			val = val[:120] + "..."
		}
		fmt.Printf("  [%d] %s = %s\n", attr.Number, name, val)
	}
}

func flagNames(obj *gamedb.Object) string {
	flagMap := map[int]string{
		gamedb.FlagSeeThru:  "TRANSPARENT",
		gamedb.FlagWizard:   "WIZARD",
		gamedb.FlagLinkOK:   "LINK_OK",
		gamedb.FlagDark:     "DARK",
		gamedb.FlagSticky:   "STICKY",
		gamedb.FlagHaven:    "HAVEN",
		gamedb.FlagQuiet:    "QUIET",
		gamedb.FlagGoing:    "GOING",
		gamedb.FlagMyopic:   "MYOPIC",
		gamedb.FlagEnterOK:  "ENTER_OK",
		gamedb.FlagVisual:   "VISUAL",
		gamedb.FlagImmortal: "IMMORTAL",
		gamedb.FlagOpaque:   "OPAQUE",
		gamedb.FlagInherit:  "INHERIT",
		gamedb.FlagSafe:     "SAFE",
		gamedb.FlagRoyalty:  "ROYALTY",
	}

	var names []string
	for flag, name := range flagMap {
		if obj.Flags[0]&flag != 0 {
			names = append(names, name)
		}
	}
	if obj.HasFlag2(gamedb.Flag2Unfindable) {
		names = append(names, "UNFINDABLE")
	}
	if obj.HasFlag3(gamedb.Flag3Proxy) {
		names = append(names, "PROXY")
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, " ")
}
