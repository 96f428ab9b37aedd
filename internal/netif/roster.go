package netif

import (
	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
)

// Roster performs whole-interface operations.
type Roster struct {
	opener Opener
	auto   AutoConfigurer
	log    *logging.Logger
}

// NewRoster returns a Roster opening channels from opener.
func NewRoster(opener Opener) *Roster {
	return &Roster{
		opener: opener,
		log:    logging.WithComponent("netif"),
	}
}

// WithAutoConfigurer sets the service handed to every Interface.
func (r *Roster) WithAutoConfigurer(a AutoConfigurer) *Roster {
	r.auto = a
	return r
}

// Opener returns the roster's channel opener.
func (r *Roster) Opener() Opener { return r.opener }

// Interface returns a handle for name. The interface need not exist.
func (r *Roster) Interface(name string) *Interface {
	i := New(name, r.opener)
	i.auto = r.auto
	return i
}

func (r *Roster) do(op, name string, fn func(Channel) error) error {
	ch, err := r.opener.Open()
	if err != nil {
		return wrapOp(err, op, name)
	}
	defer ch.Close()
	return wrapOp(fn(ch), op, name)
}

// Names lists every interface by name, in kernel index order.
func (r *Roster) Names() ([]string, error) {
	var names []string
	err := r.do("list interfaces", "", func(ch Channel) (err error) {
		names, err = ch.Names()
		return
	})
	return names, err
}

// Count returns the number of interfaces.
func (r *Roster) Count() (int, error) {
	names, err := r.Names()
	return len(names), err
}

// ByIndex returns the interface with kernel index index.
func (r *Roster) ByIndex(index int) (*Interface, error) {
	var name string
	err := r.do("lookup index", "", func(ch Channel) (err error) {
		name, err = ch.NameByIndex(index)
		return
	})
	if err != nil {
		return nil, err
	}
	return r.Interface(name), nil
}

// Add registers a new interface.
func (r *Roster) Add(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	r.log.Info("adding interface", "interface", name)
	return r.do("add interface", name, func(ch Channel) error {
		return ch.AddInterface(name)
	})
}

// Remove destroys an interface.
func (r *Roster) Remove(name string) error {
	r.log.Info("removing interface", "interface", name)
	return r.do("remove interface", name, func(ch Channel) error {
		return ch.RemoveInterface(name)
	})
}

// ValidateName checks an interface name against kernel limits.
func ValidateName(name string) error {
	if name == "" {
		return errors.New(errors.KindUsage, "interface name is empty")
	}
	if len(name) > MaxNameLength {
		return errors.Errorf(errors.KindParse, "interface name %q is longer than %d bytes", name, MaxNameLength)
	}
	for _, c := range name {
		if c == '/' || c == ' ' || c == ':' || c < 0x21 || c > 0x7e {
			return errors.Errorf(errors.KindParse, "invalid character %q in interface name %q", c, name)
		}
	}
	return nil
}
