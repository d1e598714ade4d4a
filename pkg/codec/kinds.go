package codec

import (
	"strings"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Wire tags for the structural block kinds.
const (
	TagGroup         = "BlockGroup"
	TagNote          = "BlockNote"
	TagSubflowHeader = "BlockSubflowHeader"
)

// structuralAliases maps folded spellings found in foreign documents to the
// in-memory structural kinds.
var structuralAliases = map[string]string{
	"group":              domain.KindGroup,
	"groupnode":          domain.KindGroup,
	"blockgroup":         domain.KindGroup,
	"note":               domain.KindNote,
	"notenode":           domain.KindNote,
	"blocknote":          domain.KindNote,
	"stickynote":         domain.KindNote,
	"subflowheader":      domain.KindSubflowHeader,
	"subflowheadernode":  domain.KindSubflowHeader,
	"blocksubflowheader": domain.KindSubflowHeader,
	"blockpackage":       domain.KindSubflowHeader,
}

func fold(s string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// CanonicalKind maps a wire type tag to the in-memory kind. Structural tags
// are matched case-insensitively, ignoring '-', '_' and spaces; every other
// tag is an ordinary module kind and is returned unchanged.
func CanonicalKind(tag string) string {
	if k, ok := structuralAliases[fold(tag)]; ok {
		return k
	}
	return tag
}

// WireTag maps an in-memory kind to its serialized type tag.
func WireTag(kind string) string {
	switch kind {
	case domain.KindGroup:
		return TagGroup
	case domain.KindNote:
		return TagNote
	case domain.KindSubflowHeader:
		return TagSubflowHeader
	default:
		return kind
	}
}
