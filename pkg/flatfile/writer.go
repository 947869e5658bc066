package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// writerFlags is the version word for dumps this package produces: all
// three flag words, powers, zones, links, parents, quoted strings, and
// money folded into attributes.
const writerFlags = VZone | VLink | VParent | VAtrMoney | VXFlags | VPowers | V3Flags | VQuoted

// Save writes db to path as a TinyMUSH 3.x flatfile.
func Save(path string, db *gamedb.Database) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create flatfile: %w", err)
	}
	if err := Write(f, db); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write dumps db to w in flatfile format.
func Write(w io.Writer, db *gamedb.Database) error {
	bw := bufio.NewWriterSize(w, 256*1024)

	version := db.Version
	if version == 0 {
		version = 1
	}
	fmt.Fprintf(bw, "+T%d\n", writerFlags|version)
	fmt.Fprintf(bw, "+S%d\n", len(db.Objects))
	fmt.Fprintf(bw, "+N%d\n", db.NextAttr)

	defNums := make([]int, 0, len(db.AttrNames))
	for num := range db.AttrNames {
		defNums = append(defNums, num)
	}
	sort.Ints(defNums)
	for _, num := range defNums {
		def := db.AttrNames[num]
		fmt.Fprintf(bw, "+A%d\n", num)
		writeQuoted(bw, fmt.Sprintf("%d:%s", def.Flags, def.Name))
	}

	refs := make([]gamedb.DBRef, 0, len(db.Objects))
	for ref := range db.Objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })

	for _, ref := range refs {
		writeObject(bw, db.Objects[ref])
	}

	fmt.Fprint(bw, "***END OF DUMP***\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write flatfile: %w", err)
	}
	return nil
}

func writeObject(w *bufio.Writer, obj *gamedb.Object) {
	fmt.Fprintf(w, "!%d\n", obj.DBRef)
	writeQuoted(w, obj.Name)
	fmt.Fprintf(w, "%d\n", obj.Location)
	fmt.Fprintf(w, "%d\n", obj.Zone)
	fmt.Fprintf(w, "%d\n", obj.Contents)
	fmt.Fprintf(w, "%d\n", obj.Exits)
	fmt.Fprintf(w, "%d\n", obj.Link)
	fmt.Fprintf(w, "%d\n", obj.Next)
	writeBoolExp(w, obj.Lock)
	fmt.Fprint(w, "\n")
	fmt.Fprintf(w, "%d\n", obj.Owner)
	fmt.Fprintf(w, "%d\n", obj.Parent)
	fmt.Fprintf(w, "%d\n%d\n%d\n", obj.Flags[0], obj.Flags[1], obj.Flags[2])
	fmt.Fprintf(w, "%d\n%d\n", obj.Powers[0], obj.Powers[1])
	for _, attr := range obj.Attrs {
		fmt.Fprintf(w, ">%d\n", attr.Number)
		writeQuoted(w, attr.Value)
	}
	fmt.Fprint(w, "<\n")
}

// writeBoolExp serializes a lock tree in the form the parser reads. A nil
// expression is the null (unlocked) key and writes nothing.
func writeBoolExp(w *bufio.Writer, b *gamedb.BoolExp) {
	if b == nil {
		return
	}
	switch b.Type {
	case gamedb.BoolAnd:
		fmt.Fprint(w, "(")
		writeBoolExp(w, b.Sub1)
		fmt.Fprint(w, "&")
		writeBoolExp(w, b.Sub2)
		fmt.Fprint(w, ")")
	case gamedb.BoolOr:
		fmt.Fprint(w, "(")
		writeBoolExp(w, b.Sub1)
		fmt.Fprint(w, "|")
		writeBoolExp(w, b.Sub2)
		fmt.Fprint(w, ")")
	case gamedb.BoolNot:
		fmt.Fprint(w, "(!")
		writeBoolExp(w, b.Sub1)
		fmt.Fprint(w, ")")
	case gamedb.BoolIs:
		fmt.Fprint(w, "(=")
		writeBoolExp(w, b.Sub1)
		fmt.Fprint(w, ")")
	case gamedb.BoolCarry:
		fmt.Fprint(w, "(+")
		writeBoolExp(w, b.Sub1)
		fmt.Fprint(w, ")")
	case gamedb.BoolOwner:
		fmt.Fprint(w, "($")
		writeBoolExp(w, b.Sub1)
		fmt.Fprint(w, ")")
	case gamedb.BoolConst:
		fmt.Fprintf(w, "%d", b.Thing)
	case gamedb.BoolAttr:
		fmt.Fprintf(w, "%d:%s", b.Thing, b.StrVal)
	}
}

// writeQuoted writes a string value in quoted form with escapes.
func writeQuoted(w *bufio.Writer, s string) {
	var buf strings.Builder
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteByte(s[i])
		}
	}
	buf.WriteByte('"')
	buf.WriteByte('\n')
	fmt.Fprint(w, buf.String())
}
