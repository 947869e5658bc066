package gamedb

// DBRef is the fundamental object reference type in MUSH.
type DBRef int

const (
	Nothing   DBRef = -1
	Ambiguous DBRef = -2
	Home      DBRef = -3
	NoPerm    DBRef = -4
)

// ObjectType represents the type of a MUSH object.
type ObjectType int

const (
	TypeRoom    ObjectType = 0
	TypeThing   ObjectType = 1
	TypeExit    ObjectType = 2
	TypePlayer  ObjectType = 3
	TypeZone    ObjectType = 4
	TypeGarbage ObjectType = 5
)

func (t ObjectType) String() string {
	switch t {
	case TypeRoom:
		return "ROOM"
	case TypeThing:
		return "THING"
	case TypeExit:
		return "EXIT"
	case TypePlayer:
		return "PLAYER"
	case TypeZone:
		return "ZONE"
	case TypeGarbage:
		return "GARBAGE"
	default:
		return "UNKNOWN"
	}
}

const TypeMask = 0x7

// Flag constants - first word
const (
	FlagSeeThru  = 0x00000008
	FlagWizard   = 0x00000010
	FlagLinkOK   = 0x00000020
	FlagDark     = 0x00000040
	FlagSticky   = 0x00000100
	FlagHaven    = 0x00000400
	FlagQuiet    = 0x00000800
	FlagGoing    = 0x00004000
	FlagMyopic   = 0x00010000
	FlagEnterOK  = 0x00080000
	FlagVisual   = 0x00100000
	FlagImmortal = 0x00200000
	FlagOpaque   = 0x00800000
	FlagInherit  = 0x02000000
	FlagSafe     = 0x10000000
	FlagRoyalty  = 0x20000000
)

// Flag constants - second word
const (
	Flag2Key        = 0x00000001
	Flag2Abode      = 0x00000002
	Flag2Floating   = 0x00000004
	Flag2Unfindable = 0x00000008
	Flag2ParentOK   = 0x00000010
	Flag2Light      = 0x00000020
	Flag2Connected  = 0x00000200
	Flag2Blind      = 0x00008000
	Flag2ControlOK  = 0x00010000
	Flag2StopMatch  = 0x00400000
	Flag2Staff      = 0x10000000
)

// Flag constants - third word (GoTinyMUSH extensions)
const (
	// Flag3Proxy marks a thing as a virtual stand-in that may be matched
	// through PROXY` attribute registrations on a location.
	Flag3Proxy = 0x00000001
)

// Power constants - first word (Powers[0])
const (
	PowChownAny    = 0x00000002
	PowControlAll  = 0x00000020
	PowExamAll     = 0x00000080 // See_All
	PowFindUnfind  = 0x00000100
	PowHide        = 0x00000800
	PowLongfingers = 0x00004000
	PowPassLocks   = 0x04000000
)

// Attribute flag constants (from TinyMUSH attrs.h)
const (
	AFODark    = 0x00000001 // Only owner can see
	AFDark     = 0x00000002 // Only God (#1) can see
	AFWizard   = 0x00000004 // Only wizards can change
	AFMDark    = 0x00000008 // Only wizards can see
	AFInternal = 0x00000010 // Don't show even to God
	AFLock     = 0x00000040 // Attribute is locked (per-instance)
	AFGod      = 0x00000200 // Only God can change
	AFIsLock   = 0x00000400 // Attribute is a lock
	AFVisual   = 0x00000800 // Anyone can see
	AFPrivate  = 0x00001000 // Not inherited by children
)

// BoolExpType represents the type of a boolean lock expression node.
type BoolExpType int

const (
	BoolAnd   BoolExpType = 0
	BoolOr    BoolExpType = 1
	BoolNot   BoolExpType = 2
	BoolConst BoolExpType = 3
	BoolAttr  BoolExpType = 4
	BoolCarry BoolExpType = 6
	BoolIs    BoolExpType = 7
	BoolOwner BoolExpType = 8
)

// BoolExp represents a parsed boolean lock expression.
type BoolExp struct {
	Type   BoolExpType
	Sub1   *BoolExp
	Sub2   *BoolExp
	Thing  int    // dbref or attribute number
	StrVal string // for ATR lock pattern values
}

// Attribute represents a single attribute on an object.
type Attribute struct {
	Number int
	Value  string
}

// AttrDef represents a user-defined attribute name definition.
type AttrDef struct {
	Number int
	Name   string
	Flags  int
}

// Object represents a MUSH database object.
type Object struct {
	DBRef    DBRef
	Name     string
	Location DBRef
	Zone     DBRef
	Contents DBRef
	Exits    DBRef
	Link     DBRef
	Next     DBRef
	Owner    DBRef
	Parent   DBRef
	Flags    [3]int
	Powers   [2]int
	Attrs    []Attribute
	Lock     *BoolExp // parsed default lock (if in header)
}

// ObjType returns the object type from the flags.
func (o *Object) ObjType() ObjectType {
	return ObjectType(o.Flags[0] & TypeMask)
}

// HasFlag checks if a flag bit is set in the first flag word.
func (o *Object) HasFlag(flag int) bool {
	return o.Flags[0]&flag != 0
}

// HasFlag2 checks if a flag bit is set in the second flag word.
func (o *Object) HasFlag2(flag int) bool {
	return o.Flags[1]&flag != 0
}

// HasFlag3 checks if a flag bit is set in the third flag word.
func (o *Object) HasFlag3(flag int) bool {
	return o.Flags[2]&flag != 0
}

// IsGoing returns true if the object is marked for destruction.
func (o *Object) IsGoing() bool {
	return o.HasFlag(FlagGoing)
}

// HasPower checks if a power bit is set in the given power word (0 or 1).
func (o *Object) HasPower(word, bit int) bool {
	if word < 0 || word > 1 {
		return false
	}
	return o.Powers[word]&bit != 0
}

// Database holds the complete in-memory game state.
type Database struct {
	Version    int
	Size       int
	NextAttr   int
	Objects    map[DBRef]*Object
	AttrNames  map[int]*AttrDef    // attr number -> definition
	AttrByName map[string]*AttrDef // attr name -> definition
}

// NewDatabase creates an empty Database.
func NewDatabase() *Database {
	return &Database{
		Objects:    make(map[DBRef]*Object),
		AttrNames:  make(map[int]*AttrDef),
		AttrByName: make(map[string]*AttrDef),
	}
}

// AddAttrDef registers a user-defined attribute.
func (db *Database) AddAttrDef(num int, name string, flags int) {
	def := &AttrDef{Number: num, Name: name, Flags: flags}
	db.AttrNames[num] = def
	db.AttrByName[name] = def
}

// GetAttrName returns the name for an attribute number, or "" if unknown.
func (db *Database) GetAttrName(num int) string {
	if def, ok := db.AttrNames[num]; ok {
		return def.Name
	}
	if name, ok := WellKnownAttrs[num]; ok {
		return name
	}
	return ""
}

// ContentsList walks an object's Contents/Next chain and returns the refs
// in chain order. A corrupted (cyclic) chain is cut off at the database size.
func (db *Database) ContentsList(ref DBRef) []DBRef {
	obj, ok := db.Objects[ref]
	if !ok {
		return nil
	}
	return db.chainList(obj.Contents)
}

// ExitsList walks an object's Exits/Next chain and returns the refs in
// chain order.
func (db *Database) ExitsList(ref DBRef) []DBRef {
	obj, ok := db.Objects[ref]
	if !ok {
		return nil
	}
	return db.chainList(obj.Exits)
}

func (db *Database) chainList(start DBRef) []DBRef {
	var out []DBRef
	limit := len(db.Objects) + 1
	for next := start; next != Nothing && limit > 0; limit-- {
		out = append(out, next)
		obj, ok := db.Objects[next]
		if !ok {
			break
		}
		next = obj.Next
	}
	return out
}
