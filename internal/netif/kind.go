package netif

import (
	"strconv"
	"strings"
)

// linkKind picks the kind of link to create from its name: "parent.N" is a
// VLAN on parent, "br*" a bridge, "bond*" a bond and anything else a dummy.
type linkKind struct {
	kind   string
	parent string
	vlanID int
}

func kindForName(name string) linkKind {
	if dot := strings.LastIndexByte(name, '.'); dot > 0 && dot < len(name)-1 {
		if id, err := strconv.Atoi(name[dot+1:]); err == nil && id > 0 && id < 4095 {
			return linkKind{kind: "vlan", parent: name[:dot], vlanID: id}
		}
	}
	switch {
	case strings.HasPrefix(name, "bond"):
		return linkKind{kind: "bond"}
	case strings.HasPrefix(name, "br"):
		return linkKind{kind: "bridge"}
	}
	return linkKind{kind: "dummy"}
}

func (k linkKind) String() string {
	if k.kind == "vlan" {
		return "link " + k.parent + " type vlan id " + strconv.Itoa(k.vlanID)
	}
	return "type " + k.kind
}
