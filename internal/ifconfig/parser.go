package ifconfig

import (
	"strconv"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

type state int

const (
	parsingFamily state = iota
	parsingAddress
	parsingMask
	parsingOptions
	committing
)

func (s state) String() string {
	switch s {
	case parsingFamily:
		return "family"
	case parsingAddress:
		return "address"
	case parsingMask:
		return "mask"
	case parsingOptions:
		return "options"
	}
	return "commit"
}

// flagWords maps bare flag keywords to the flags they add and remove.
var flagWords = map[string]struct{ add, remove netif.Flags }{
	"up":        {add: netif.FlagUp},
	"-down":     {add: netif.FlagUp},
	"down":      {remove: netif.FlagUp},
	"-up":       {remove: netif.FlagUp},
	"bcast":     {add: netif.FlagBroadcast},
	"-bcast":    {remove: netif.FlagBroadcast},
	"promisc":   {add: netif.FlagPromiscuous},
	"-promisc":  {remove: netif.FlagPromiscuous},
	"allmulti":  {add: netif.FlagAllMulti},
	"-allmulti": {remove: netif.FlagAllMulti},
	"loopback":  {add: netif.FlagLoopback},
	"arp":       {remove: netif.FlagNoARP},
	"-arp":      {add: netif.FlagNoARP},
}

type parser struct {
	args  []string
	pos   int
	state state
	in    *Intent
}

// Parse turns the tokens following an interface name into a validated
// Intent. It performs no kernel requests.
func Parse(name string, args []string) (*Intent, error) {
	p := &parser{args: args, in: newIntent(name)}

	for p.state != committing {
		var err error
		switch p.state {
		case parsingFamily:
			p.family()
		case parsingAddress:
			p.address()
		case parsingMask:
			p.mask()
		case parsingOptions:
			err = p.option()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := p.in.validate(); err != nil {
		return nil, err
	}
	return p.in, nil
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.args) {
		return "", false
	}
	return p.args[p.pos], true
}

func (p *parser) next() (string, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

// value consumes the argument of keyword.
func (p *parser) value(keyword string) (string, error) {
	v, ok := p.next()
	if !ok {
		return "", errors.Attr(errors.Errorf(errors.KindUsage, "option '%s' expected parameter", keyword), "keyword", keyword)
	}
	return v, nil
}

func (p *parser) family() {
	p.state = parsingAddress
	tok, ok := p.peek()
	if !ok {
		return
	}
	if f := netaddr.Resolve(tok); f != netaddr.Unspecified {
		p.in.Family = f
		p.pos++
	}
}

func (p *parser) address() {
	p.state = parsingOptions
	tok, ok := p.peek()
	if !ok {
		return
	}
	if a, ok := netaddr.Parse(&p.in.Family, tok); ok {
		p.in.Address = a
		p.pos++
		p.state = parsingMask
	}
}

func (p *parser) mask() {
	p.state = parsingOptions
	tok, ok := p.peek()
	if !ok {
		return
	}
	if m, ok := netaddr.Parse(&p.in.Family, tok); ok {
		p.in.Mask = m
		p.in.maskSet = true
		p.pos++
	}
}

func (p *parser) parseAddress(keyword, text string) (netaddr.Address, error) {
	a, ok := netaddr.Parse(&p.in.Family, text)
	if !ok {
		return netaddr.Address{}, errors.Attr(errors.Errorf(errors.KindParse,
			"option '%s' needs valid address parameter: %q", keyword, text), "keyword", keyword)
	}
	return a, nil
}

func parseNumber(keyword, text string) (int, error) {
	n, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return 0, errors.Attr(errors.Wrapf(err, errors.KindParse, "option '%s' expected a number", keyword), "keyword", keyword)
	}
	return int(n), nil
}

func (p *parser) option() error {
	kw, ok := p.next()
	if !ok {
		p.state = committing
		return nil
	}

	in := p.in
	switch kw {
	case "peer":
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		if in.Peer, err = p.parseAddress(kw, v); err != nil {
			return err
		}

	case "nm", "netmask":
		if in.maskSet {
			return errors.New(errors.KindConflict, "netmask or prefix length is specified twice")
		}
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		if in.Mask, err = p.parseAddress(kw, v); err != nil {
			return err
		}
		in.maskSet = true

	case "prefixlen", "plen", "prefix-length":
		if in.maskSet {
			return errors.New(errors.KindConflict, "netmask or prefix length is specified twice")
		}
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		if in.Family == netaddr.Unspecified {
			in.Family = netaddr.INET
		}
		m, ok := netaddr.ParsePrefixLength(in.Family, v)
		if !ok {
			return errors.Attr(errors.Errorf(errors.KindParse,
				"option '%s' is invalid for this address family: %q", kw, v), "keyword", kw)
		}
		in.Mask = m
		in.maskSet = true

	case "bc", "broadcast":
		if in.broadcastSet {
			return errors.New(errors.KindConflict, "broadcast address is specified twice")
		}
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		if in.Broadcast, err = p.parseAddress(kw, v); err != nil {
			return err
		}
		in.broadcastSet = true
		in.AddFlags |= netif.FlagBroadcast

	case "mtu":
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		mtu, err := parseNumber(kw, v)
		if err != nil {
			return err
		}
		if mtu <= MinMTU {
			return errors.Attr(errors.Errorf(errors.KindParse,
				"option 'mtu' expected valid max transfer unit size, got %d", mtu), "keyword", kw)
		}
		in.MTU = mtu

	case "metric":
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		if in.Metric, err = parseNumber(kw, v); err != nil {
			return err
		}

	case "media":
		v, err := p.value(kw)
		if err != nil {
			return err
		}
		in.Media = v

	case "auto-config":
		in.AutoConfig = true

	default:
		fw, ok := flagWords[kw]
		if !ok {
			return errors.Attr(errors.Errorf(errors.KindUsage, "unknown option %q", kw), "keyword", kw)
		}
		in.AddFlags |= fw.add
		in.RemoveFlags |= fw.remove
	}
	return nil
}
