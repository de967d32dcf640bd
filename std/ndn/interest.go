package ndn

import (
	"fmt"
	"strings"

	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/named-data/ndnrepo/std/types/optional"
)

// Interest holds the name and selectors a repository uses to pick a Data.
// Fields the lookup does not consult are not modelled.
type Interest struct {
	Name                      enc.Name
	MinSuffixComponents       optional.Optional[uint64]
	MaxSuffixComponents       optional.Optional[uint64]
	PublisherPublicKeyLocator *KeyLocator
	Exclude                   *Exclude
	// ChildSelector 0 prefers the leftmost child, any other value the rightmost.
	ChildSelector uint64
}

func (i *Interest) String() string {
	sb := strings.Builder{}
	sb.WriteString(i.Name.String())
	var sel []string
	if v, ok := i.MinSuffixComponents.Get(); ok {
		sel = append(sel, fmt.Sprintf("MinSuffixComponents=%d", v))
	}
	if v, ok := i.MaxSuffixComponents.Get(); ok {
		sel = append(sel, fmt.Sprintf("MaxSuffixComponents=%d", v))
	}
	if i.PublisherPublicKeyLocator != nil {
		sel = append(sel, "PublisherPublicKeyLocator="+i.PublisherPublicKeyLocator.String())
	}
	if !i.Exclude.Empty() {
		sel = append(sel, "Exclude="+i.Exclude.String())
	}
	if i.ChildSelector != 0 {
		sel = append(sel, fmt.Sprintf("ChildSelector=%d", i.ChildSelector))
	}
	if len(sel) > 0 {
		sb.WriteByte('?')
		sb.WriteString(strings.Join(sel, "&"))
	}
	return sb.String()
}
