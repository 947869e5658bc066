package gamedb

// Well-known (built-in) attribute numbers from constants.h. These are
// system-defined and always present; numbers track the C TinyMUSH source
// for the attributes this server still uses.
var WellKnownAttrs = map[int]string{
	6:   "DESC",
	7:   "SEX",
	42:  "LOCK",
	43:  "NAME",
	58:  "ALIAS",
	59:  "LENTER",
	60:  "LLEAVE",
	62:  "LUSE",
	63:  "LGIVE",
	87:  "LRECEIVE",
	99:  "LCONTROL",
	136: "LINTERACT", // GoTinyMUSH extension: interaction/visibility lock
}

// Well-known attribute number constants.
const (
	AttrDesc      = 6
	AttrLock      = 42  // A_LOCK, the default (Basic) lock
	AttrAlias     = 58  // A_ALIAS, semicolon-separated alias list
	AttrLControl  = 99  // A_LCONTROL, zone control lock
	AttrLInteract = 136 // interaction lock consulted during matching
)

// AttrUserStart is the first attribute number available for user-defined attrs.
const AttrUserStart = 256

// GetAttr returns the raw value of an attribute stored directly on the
// object, or "" if absent. Parent inheritance is a Game-level concern.
func (o *Object) GetAttr(num int) string {
	for i := range o.Attrs {
		if o.Attrs[i].Number == num {
			return o.Attrs[i].Value
		}
	}
	return ""
}

// SetAttr stores an attribute value on the object, replacing any existing
// value for the same number. An empty value removes the attribute.
func (o *Object) SetAttr(num int, value string) {
	for i := range o.Attrs {
		if o.Attrs[i].Number == num {
			if value == "" {
				o.Attrs = append(o.Attrs[:i], o.Attrs[i+1:]...)
			} else {
				o.Attrs[i].Value = value
			}
			return
		}
	}
	if value != "" {
		o.Attrs = append(o.Attrs, Attribute{Number: num, Value: value})
	}
}
