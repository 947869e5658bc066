// Package flatfile reads and writes TinyMUSH 3.x flatfile dumps, the
// interchange format produced by @dump/flat. Loading one yields the
// in-memory Database the resolver and bolt store work with.
package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// Version flags from db.h
const (
	VMask        = 0x000000ff
	VZone        = 0x00000100
	VLink        = 0x00000200
	VGDBM        = 0x00000400
	VAtrName     = 0x00000800
	VAtrKey      = 0x00001000
	VParent      = 0x00002000
	VAtrMoney    = 0x00008000
	VXFlags      = 0x00010000
	VPowers      = 0x00020000
	V3Flags      = 0x00040000
	VQuoted      = 0x00080000
	VTQuotas     = 0x00100000
	VTimestamps  = 0x00200000
	VVisualAttrs = 0x00400000
)

// Lock expression token characters
const (
	NotToken   = '!'
	AndToken   = '&'
	OrToken    = '|'
	IndirToken = '@'
	CarryToken = '+'
	IsToken    = '='
	OwnerToken = '$'
)

// Parser reads a TinyMUSH flatfile and produces a Database.
type Parser struct {
	reader  *bufio.Reader
	db      *gamedb.Database
	line    int
	version int

	readName       bool
	readZone       bool
	readLink       bool
	readKey        bool
	readParent     bool
	readMoney      bool
	readExtFlags   bool
	read3Flags     bool
	readTimestamps bool
	readNewStrings bool
	readPowers     bool
}

// Load reads a flatfile from disk and returns a populated Database.
func Load(path string) (*gamedb.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flatfile: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a flatfile from the given reader.
func Parse(r io.Reader) (*gamedb.Database, error) {
	p := &Parser{
		reader:    bufio.NewReaderSize(r, 256*1024),
		db:        gamedb.NewDatabase(),
		readName:  true,
		readKey:   true,
		readMoney: true,
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	if p.db.Size == 0 {
		p.db.Size = len(p.db.Objects)
	}
	return p.db, nil
}

func (p *Parser) parse() error {
	for {
		ch, err := p.peekByte()
		if err == io.EOF {
			return fmt.Errorf("unexpected EOF at line %d (no end-of-dump marker)", p.line)
		}
		if err != nil {
			return fmt.Errorf("read error at line %d: %w", p.line, err)
		}

		switch ch {
		case '+':
			if err := p.parseHeader(); err != nil {
				return err
			}
		case '-':
			// Misc tags (record players etc.) carry no matching state
			p.readLine()
			p.readLine()
		case '!':
			if err := p.parseObject(); err != nil {
				return err
			}
		case '*':
			return p.parseEOF()
		case '\n', '\r':
			p.readLine()
			continue
		default:
			return fmt.Errorf("unexpected character '%c' at line %d", ch, p.line)
		}
	}
}

// parseHeader handles + prefixed lines: +T/+V/+X (version), +S (size),
// +A (attr def), +N (next attr), +F (free attr slot).
func (p *Parser) parseHeader() error {
	p.mustReadByte() // consume '+'
	ch, err := p.mustReadByte()
	if err != nil {
		return err
	}

	switch ch {
	case 'T', 'V', 'X':
		val, err := p.readInt()
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		p.applyVersionFlags(val)
		p.version = val & VMask
		p.db.Version = p.version
		if ch != 'V' {
			p.read3Flags = (val & V3Flags) != 0
			p.readPowers = (val & VPowers) != 0
			p.readNewStrings = (val & VQuoted) != 0
		}

	case 'S':
		val, err := p.readInt()
		if err != nil {
			return fmt.Errorf("reading size: %w", err)
		}
		p.db.Size = val

	case 'N':
		val, err := p.readInt()
		if err != nil {
			return fmt.Errorf("reading next attr: %w", err)
		}
		p.db.NextAttr = val

	case 'A':
		num, err := p.readInt()
		if err != nil {
			return fmt.Errorf("reading attr def number: %w", err)
		}
		str, err := p.readString()
		if err != nil {
			return fmt.Errorf("reading attr def string: %w", err)
		}
		// "flags:name" format
		aflags := 0
		name := str
		if len(str) > 0 && unicode.IsDigit(rune(str[0])) {
			idx := strings.IndexByte(str, ':')
			if idx > 0 {
				aflags, _ = strconv.Atoi(str[:idx])
				name = str[idx+1:]
			}
		}
		p.db.AddAttrDef(num, name, aflags)

	case 'F':
		if _, err := p.readInt(); err != nil {
			return fmt.Errorf("reading free attr: %w", err)
		}

	default:
		// Unknown header type, consume the line
		p.readLine()
	}

	return nil
}

func (p *Parser) applyVersionFlags(val int) {
	if val&VGDBM != 0 {
		p.readName = (val & VAtrName) == 0
	}
	if val&VZone != 0 {
		p.readZone = true
	}
	if val&VLink != 0 {
		p.readLink = true
	}
	if val&VAtrKey != 0 {
		p.readKey = false
	}
	if val&VParent != 0 {
		p.readParent = true
	}
	if val&VAtrMoney != 0 {
		p.readMoney = false
	}
	if val&VXFlags != 0 {
		p.readExtFlags = true
	}
	if val&VTimestamps != 0 {
		p.readTimestamps = true
	}
}

// parseObject reads a single object entry starting with !<dbref>.
func (p *Parser) parseObject() error {
	p.mustReadByte() // consume '!'
	ref, err := p.readInt()
	if err != nil {
		return fmt.Errorf("reading object dbref: %w", err)
	}

	obj := &gamedb.Object{
		DBRef:    gamedb.DBRef(ref),
		Location: gamedb.Nothing,
		Zone:     gamedb.Nothing,
		Contents: gamedb.Nothing,
		Exits:    gamedb.Nothing,
		Link:     gamedb.Nothing,
		Next:     gamedb.Nothing,
		Owner:    gamedb.Nothing,
		Parent:   gamedb.Nothing,
	}

	if p.readName {
		name, err := p.readString()
		if err != nil {
			return fmt.Errorf("object #%d name: %w", ref, err)
		}
		obj.Name = name
	}

	refFields := []struct {
		dst  *gamedb.DBRef
		what string
		on   bool
	}{
		{&obj.Location, "location", true},
		{&obj.Zone, "zone", p.readZone},
		{&obj.Contents, "contents", true},
		{&obj.Exits, "exits", true},
		{&obj.Link, "link", p.readLink},
		{&obj.Next, "next", true},
	}
	for _, f := range refFields {
		if !f.on {
			continue
		}
		v, err := p.readInt()
		if err != nil {
			return fmt.Errorf("object #%d %s: %w", ref, f.what, err)
		}
		*f.dst = gamedb.DBRef(v)
	}

	// LOCK, when stored in the header rather than as an attribute
	if p.readKey {
		boolexp, err := p.readBoolExp()
		if err != nil {
			return fmt.Errorf("object #%d lock: %w", ref, err)
		}
		obj.Lock = boolexp
	}

	o, err := p.readInt()
	if err != nil {
		return fmt.Errorf("object #%d owner: %w", ref, err)
	}
	obj.Owner = gamedb.DBRef(o)

	if p.readParent {
		par, err := p.readInt()
		if err != nil {
			return fmt.Errorf("object #%d parent: %w", ref, err)
		}
		obj.Parent = gamedb.DBRef(par)
	}

	// PENNIES: carried by the format, not by this database
	if p.readMoney {
		if _, err := p.readInt(); err != nil {
			return fmt.Errorf("object #%d pennies: %w", ref, err)
		}
	}

	words := 1
	if p.readExtFlags {
		words = 2
	}
	if p.read3Flags {
		words = 3
	}
	for i := 0; i < words; i++ {
		f, err := p.readInt()
		if err != nil {
			return fmt.Errorf("object #%d flags%d: %w", ref, i+1, err)
		}
		obj.Flags[i] = f
	}

	if p.readPowers {
		for i := 0; i < 2; i++ {
			pw, err := p.readInt()
			if err != nil {
				return fmt.Errorf("object #%d powers%d: %w", ref, i+1, err)
			}
			obj.Powers[i] = pw
		}
	}

	// TIMESTAMPS: read and discarded
	if p.readTimestamps {
		for i := 0; i < 2; i++ {
			if _, err := p.readLong(); err != nil {
				return fmt.Errorf("object #%d timestamp: %w", ref, err)
			}
		}
	}

	attrs, err := p.readAttrList()
	if err != nil {
		return fmt.Errorf("object #%d attrs: %w", ref, err)
	}
	obj.Attrs = attrs

	p.db.Objects[obj.DBRef] = obj
	return nil
}

// readAttrList reads the > ... < delimited attribute section.
func (p *Parser) readAttrList() ([]gamedb.Attribute, error) {
	var attrs []gamedb.Attribute

	for {
		ch, err := p.peekByte()
		if err != nil {
			return attrs, fmt.Errorf("unexpected EOF in attr list")
		}

		switch ch {
		case '>':
			p.mustReadByte() // consume '>'
			num, err := p.readInt()
			if err != nil {
				return attrs, fmt.Errorf("reading attr number: %w", err)
			}
			val, err := p.readString()
			if err != nil {
				return attrs, fmt.Errorf("reading attr value: %w", err)
			}
			if num > 0 {
				attrs = append(attrs, gamedb.Attribute{
					Number: num,
					Value:  val,
				})
			}
		case '<':
			p.mustReadByte() // consume '<'
			p.readLine()     // consume trailing newline
			return attrs, nil
		case '\n', '\r':
			p.readLine()
			continue
		default:
			// Bad character, try to skip the value
			p.mustReadByte()
			p.readString()
		}
	}
}

// readBoolExp reads a boolean lock expression terminated by newline.
func (p *Parser) readBoolExp() (*gamedb.BoolExp, error) {
	b, err := p.readBoolExp1()
	if err != nil {
		return nil, err
	}
	for {
		ch, err := p.peekByte()
		if err != nil || ch != '\n' {
			break
		}
		p.mustReadByte()
	}
	return b, nil
}

func (p *Parser) readBoolExp1() (*gamedb.BoolExp, error) {
	ch, err := p.peekByte()
	if err != nil {
		return nil, err
	}

	switch ch {
	case '\n':
		// TRUE_BOOLEXP (null lock = unlocked)
		return nil, nil

	case '(':
		p.mustReadByte() // consume '('
		ch2, _ := p.peekByte()

		switch ch2 {
		case NotToken:
			sub, err := p.readUnary()
			if err != nil {
				return nil, err
			}
			if sub == nil {
				return nil, nil
			}
			return &gamedb.BoolExp{Type: gamedb.BoolNot, Sub1: sub}, nil

		case IndirToken:
			// Indirect locks reference another object's lock at eval
			// time. This database keeps only directly evaluable locks,
			// so the sub-expression is parsed and dropped.
			if _, err := p.readUnary(); err != nil {
				return nil, err
			}
			return nil, nil

		case IsToken:
			sub, err := p.readUnary()
			if err != nil {
				return nil, err
			}
			if sub == nil {
				return nil, nil
			}
			return &gamedb.BoolExp{Type: gamedb.BoolIs, Sub1: sub}, nil

		case CarryToken:
			sub, err := p.readUnary()
			if err != nil {
				return nil, err
			}
			if sub == nil {
				return nil, nil
			}
			return &gamedb.BoolExp{Type: gamedb.BoolCarry, Sub1: sub}, nil

		case OwnerToken:
			sub, err := p.readUnary()
			if err != nil {
				return nil, err
			}
			if sub == nil {
				return nil, nil
			}
			return &gamedb.BoolExp{Type: gamedb.BoolOwner, Sub1: sub}, nil

		default:
			// Binary expression: sub1 OP sub2
			sub1, err := p.readBoolExp1()
			if err != nil {
				return nil, err
			}
			p.consumeOptionalNewline()
			op, _ := p.mustReadByte()
			b := &gamedb.BoolExp{Sub1: sub1}
			switch op {
			case AndToken:
				b.Type = gamedb.BoolAnd
			case OrToken:
				b.Type = gamedb.BoolOr
			default:
				return nil, fmt.Errorf("unexpected operator '%c' in boolexp at line %d", op, p.line)
			}
			sub2, err := p.readBoolExp1()
			if err != nil {
				return nil, err
			}
			b.Sub2 = sub2
			p.consumeOptionalNewline()
			p.expectByte(')')
			return b, nil
		}

	case '-':
		// Obsolete NOTHING key, eat it
		p.readLine()
		return nil, nil

	default:
		return p.readBoolAtom()
	}
}

// readUnary consumes the operator byte and the parenthesized operand of a
// unary lock node.
func (p *Parser) readUnary() (*gamedb.BoolExp, error) {
	p.mustReadByte() // the operator
	sub, err := p.readBoolExp1()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalNewline()
	p.expectByte(')')
	return sub, nil
}

// readBoolAtom reads a dbref constant or an attribute lock leaf. An
// evaluation lock (num/value) has no meaning without a softcode
// interpreter and degrades to an attribute comparison.
func (p *Parser) readBoolAtom() (*gamedb.BoolExp, error) {
	ch, err := p.peekByte()
	if err != nil {
		return nil, err
	}

	if ch >= '0' && ch <= '9' {
		num := 0
		for {
			ch, err := p.peekByte()
			if err != nil || ch < '0' || ch > '9' {
				break
			}
			p.mustReadByte()
			num = num*10 + int(ch-'0')
		}
		ch, _ = p.peekByte()
		if ch == ':' || ch == '/' {
			p.mustReadByte()
			val := p.readUntilBoolTerminator()
			return &gamedb.BoolExp{Type: gamedb.BoolAttr, Thing: num, StrVal: val}, nil
		}
		return &gamedb.BoolExp{Type: gamedb.BoolConst, Thing: num}, nil
	}

	if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
		var name strings.Builder
		for {
			ch, err := p.peekByte()
			if err != nil || ch == ':' || ch == '/' || ch == '\n' {
				break
			}
			p.mustReadByte()
			name.WriteByte(ch)
		}
		ch, _ = p.peekByte()
		if ch == ':' || ch == '/' {
			p.mustReadByte()
			val := p.readUntilBoolTerminator()
			num := 0
			if def, ok := p.db.AttrByName[strings.ToUpper(name.String())]; ok {
				num = def.Number
			}
			return &gamedb.BoolExp{Type: gamedb.BoolAttr, Thing: num, StrVal: val}, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (p *Parser) readUntilBoolTerminator() string {
	var s strings.Builder
	for {
		ch, err := p.peekByte()
		if err != nil || ch == '\n' || ch == ')' || ch == OrToken || ch == AndToken {
			break
		}
		p.mustReadByte()
		s.WriteByte(ch)
	}
	return s.String()
}

// parseEOF handles the ***END OF DUMP*** marker.
func (p *Parser) parseEOF() error {
	line, _ := p.readLine()
	if strings.TrimSpace(line) != "***END OF DUMP***" {
		return fmt.Errorf("bad EOF marker: %q", line)
	}
	return nil
}

// --- Low-level I/O helpers ---

func (p *Parser) peekByte() (byte, error) {
	b, err := p.reader.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *Parser) mustReadByte() (byte, error) {
	b, err := p.reader.ReadByte()
	if b == '\n' {
		p.line++
	}
	return b, err
}

func (p *Parser) expectByte(expected byte) error {
	b, err := p.mustReadByte()
	if err != nil {
		return err
	}
	if b != expected {
		return fmt.Errorf("expected '%c' got '%c' at line %d", expected, b, p.line)
	}
	return nil
}

func (p *Parser) consumeOptionalNewline() {
	ch, err := p.peekByte()
	if err == nil && ch == '\n' {
		p.mustReadByte()
	}
}

// readLine reads until end of line and returns the content (excluding newline).
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	p.line++
	return strings.TrimRight(line, "\r\n"), err
}

// readInt reads a line and parses it as an integer.
func (p *Parser) readInt() (int, error) {
	line, err := p.readLine()
	if err != nil && err != io.EOF {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, nil
	}
	return strconv.Atoi(line)
}

// readLong reads a line and parses it as int64.
func (p *Parser) readLong() (int64, error) {
	line, err := p.readLine()
	if err != nil && err != io.EOF {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, nil
	}
	return strconv.ParseInt(line, 10, 64)
}

// readString reads a possibly quoted string value.
func (p *Parser) readString() (string, error) {
	ch, err := p.peekByte()
	if err != nil {
		return "", err
	}
	if ch == '"' && p.readNewStrings {
		return p.readQuotedString()
	}
	return p.readLine()
}

// readQuotedString reads a "..." delimited string, handling escapes.
func (p *Parser) readQuotedString() (string, error) {
	p.mustReadByte() // consume opening "

	var buf strings.Builder
	for {
		b, err := p.mustReadByte()
		if err != nil {
			return buf.String(), err
		}
		switch b {
		case '"':
			// End of string; consume trailing newline if present
			ch, err := p.peekByte()
			if err == nil && (ch == '\n' || ch == '\r') {
				p.readLine()
			}
			return buf.String(), nil
		case '\\':
			next, err := p.mustReadByte()
			if err != nil {
				return buf.String(), err
			}
			switch next {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '\\':
				buf.WriteByte('\\')
			case '"':
				buf.WriteByte('"')
			default:
				buf.WriteByte('\\')
				buf.WriteByte(next)
			}
		default:
			buf.WriteByte(b)
		}
	}
}
