// matchtest is an interactive harness for the name resolver: it loads a
// world from a bolt database (or builds a small demo world) and resolves
// tokens typed on stdin, printing the resulting dbref or sentinel.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/crystal-mush/mushmatch/pkg/boltstore"
	"github.com/crystal-mush/mushmatch/pkg/events"
	"github.com/crystal-mush/mushmatch/pkg/gamedb"
	"github.com/crystal-mush/mushmatch/pkg/match"
	"github.com/crystal-mush/mushmatch/pkg/server"
)

// consoleSession prints bus events the way a connected client would see
// them. With audit enabled it also prints resolution records.
type consoleSession struct {
	audit bool
}

func (c *consoleSession) Receive(ev events.Event) {
	switch ev.Type {
	case events.EvNotify, events.EvText, events.EvRoom:
		fmt.Printf("[notify #%d] %s\n", ev.Player, ev.Text)
	case events.EvResolve:
		if c.audit {
			fmt.Printf("[audit] #%d %q -> #%d (%s)\n", ev.Source, ev.Query, ev.Ref, ev.Outcome)
		}
	}
}

func (c *consoleSession) Closed() bool { return false }

func main() {
	dbPath := flag.String("db", "", "Path to bolt world database")
	player := flag.Int("player", 1, "DBRef number to resolve for")
	where := flag.Int("where", -1, "DBRef to resolve relative to (defaults to player)")
	typeStr := flag.String("type", "", "Preferred types: comma list of room,thing,exit,player,zone (empty = any)")
	flagStr := flag.String("flags", "everything", "Match flags: comma list of set/flag names")
	expr := flag.String("e", "", "Token to resolve (non-interactive mode)")
	metricsAddr := flag.String("metrics", "", "Address to serve Prometheus metrics on (e.g. :9090)")
	audit := flag.Bool("audit", false, "Print a resolution audit line for every query")
	flag.Parse()

	var db *gamedb.Database
	if *dbPath != "" {
		store, err := boltstore.Open(*dbPath)
		if err != nil {
			log.Fatalf("open world: %v", err)
		}
		defer store.Close()
		db, err = store.LoadAll()
		if err != nil {
			log.Fatalf("load world: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Loaded %d objects from %s\n", len(db.Objects), *dbPath)
	} else {
		db = demoWorld()
		fmt.Fprintln(os.Stderr, "No -db given; using built-in demo world")
	}

	bus := events.NewBus()
	bus.SubscribeGlobal(&consoleSession{audit: *audit})
	game := server.NewBusGame(db, bus)

	if *metricsAddr != "" {
		m := server.NewMetrics(game, time.Now())
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			log.Printf("Metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	typ, err := parseTypes(*typeStr)
	if err != nil {
		log.Fatal(err)
	}
	flags, err := parseFlags(*flagStr)
	if err != nil {
		log.Fatal(err)
	}

	who := gamedb.DBRef(*player)
	anchor := who
	if *where >= 0 {
		anchor = gamedb.DBRef(*where)
	}

	resolve := func(token string) {
		ref := game.MatchRelative(who, anchor, token, typ, flags)
		switch match.Classify(ref) {
		case match.StatusFound:
			fmt.Printf("%s(#%d%s)\n", game.ObjName(ref), ref, typeLetter(game, ref))
		case match.StatusAmbiguous:
			fmt.Println("*AMBIGUOUS*")
		default:
			fmt.Println("*NOTHING*")
		}
	}

	if *expr != "" {
		resolve(*expr)
		return
	}

	fmt.Fprintf(os.Stderr, "Resolving for #%d relative to #%d. Ctrl-D to exit.\n", who, anchor)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "match> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		resolve(line)
	}
}

func typeLetter(g *server.Game, ref gamedb.DBRef) string {
	switch g.Typeof(ref) {
	case gamedb.TypeRoom:
		return "R"
	case gamedb.TypeExit:
		return "E"
	case gamedb.TypePlayer:
		return "P"
	case gamedb.TypeZone:
		return "Z"
	}
	return ""
}

func parseTypes(s string) (match.TypeMask, error) {
	if strings.TrimSpace(s) == "" {
		return match.NoType, nil
	}
	var typ match.TypeMask
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "room":
			typ |= match.TypeRoom
		case "thing":
			typ |= match.TypeThing
		case "exit":
			typ |= match.TypeExit
		case "player":
			typ |= match.TypePlayer
		case "zone":
			typ |= match.TypeZone
		default:
			return 0, fmt.Errorf("unknown type %q", part)
		}
	}
	return typ, nil
}

var flagNames = map[string]match.Flags{
	"checkkeys":      match.CheckKeys,
	"global":         match.Global,
	"remotes":        match.Remotes,
	"near":           match.Near,
	"control":        match.Control,
	"me":             match.Me,
	"here":           match.Here,
	"absolute":       match.Absolute,
	"pmatch":         match.PMatch,
	"player":         match.Player,
	"neighbor":       match.Neighbor,
	"possession":     match.Possession,
	"exit":           match.Exit,
	"carriedexit":    match.CarriedExit,
	"container":      match.Container,
	"remotecontents": match.RemoteContents,
	"english":        match.English,
	"typestrict":     match.TypeStrict,
	"exactonly":      match.ExactOnly,
	"noisy":          match.Noisy,
	"last":           match.Last,
	"contents":       match.Contents,
	"everything":     match.Everything,
	"nearby":         match.Nearby,
	"objects":        match.Objects,
	"nearthings":     match.NearThings,
	"remote":         match.Remote,
	"limited":        match.Limited,
}

func parseFlags(s string) (match.Flags, error) {
	var flags match.Flags
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		f, ok := flagNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown match flag %q", part)
		}
		flags |= f
	}
	return flags, nil
}

// demoWorld builds a small world: a room with a wizard, some props, two
// exits, and a proxy-registered vending machine.
func demoWorld() *gamedb.Database {
	db := gamedb.NewDatabase()
	db.NextAttr = gamedb.AttrUserStart

	add := func(ref gamedb.DBRef, name string, typ gamedb.ObjectType, loc gamedb.DBRef) *gamedb.Object {
		obj := &gamedb.Object{
			DBRef:    ref,
			Name:     name,
			Location: loc,
			Zone:     gamedb.Nothing,
			Contents: gamedb.Nothing,
			Exits:    gamedb.Nothing,
			Link:     gamedb.Nothing,
			Next:     gamedb.Nothing,
			Owner:    1,
			Parent:   gamedb.Nothing,
			Flags:    [3]int{int(typ), 0, 0},
		}
		db.Objects[ref] = obj
		return obj
	}
	contain := func(loc, obj gamedb.DBRef) {
		db.Objects[obj].Next = db.Objects[loc].Contents
		db.Objects[loc].Contents = obj
	}
	openExit := func(ref gamedb.DBRef, name string, from gamedb.DBRef) {
		exit := add(ref, name, gamedb.TypeExit, gamedb.Nothing)
		exit.Exits = from
		exit.Next = db.Objects[from].Exits
		db.Objects[from].Exits = ref
	}

	add(0, "The Crystal Foyer", gamedb.TypeRoom, gamedb.Nothing)
	wiz := add(1, "Wizard", gamedb.TypePlayer, 0)
	wiz.Flags[0] |= gamedb.FlagWizard
	add(2, "Master Room", gamedb.TypeRoom, gamedb.Nothing)
	contain(0, 1)

	add(3, "apple", gamedb.TypeThing, 0)
	contain(0, 3)
	add(4, "apple pie", gamedb.TypeThing, 0)
	contain(0, 4)
	add(5, "brass lantern", gamedb.TypeThing, 1)
	contain(1, 5)

	openExit(6, "North;n;out", 0)
	openExit(7, "South;s", 0)

	vend := add(8, "vending machine", gamedb.TypeThing, gamedb.Nothing)
	vend.Flags[2] |= gamedb.Flag3Proxy
	game := server.NewGame(db)
	game.RegisterProxy(0, 8, 1)

	return db
}
