//go:build linux

package netif

import (
	"math"

	"github.com/safchain/ethtool"
	"grimm.is/ifconf/internal/media"
)

type ethtoolMedia struct {
	handle *ethtool.Ethtool
}

func openEthtool() (*ethtoolMedia, error) {
	h, err := ethtool.NewEthtool()
	if err != nil {
		return nil, err
	}
	return &ethtoolMedia{handle: h}, nil
}

// Media reports the negotiated media. A link without carrier reports a
// zero or all-ones speed and is returned inactive.
func (e *ethtoolMedia) Media(name string, typ media.Type) (media.Media, error) {
	settings, err := e.handle.GetLinkSettings(name)
	if err != nil {
		return media.Media{}, err
	}

	m := media.Media{Type: typ}
	speed := uint32(settings.Speed)
	if speed != 0 && speed != math.MaxUint32 {
		m.Active = true
		m.Subtype = media.FromSpeed(typ, speed)
	}
	if m.Subtype == media.SubtypeNone && settings.Autoneg != 0 {
		m.Subtype = media.Auto
	}

	switch settings.Duplex {
	case ethtool.DUPLEX_FULL:
		m.Options |= media.FullDuplex
	case ethtool.DUPLEX_HALF:
		m.Options |= media.HalfDuplex
	}
	return m, nil
}

// SetMedia forces speed and duplex, or turns autonegotiation back on for
// media.Auto.
func (e *ethtoolMedia) SetMedia(name string, m media.Media) error {
	cmd := &ethtool.EthtoolCmd{}
	if _, err := e.handle.CmdGet(cmd, name); err != nil {
		return err
	}

	if m.Subtype == media.Auto {
		cmd.Autoneg = 1
	} else {
		speed := media.Speed(m.Subtype)
		cmd.Speed = uint16(speed & 0xffff)
		cmd.Speed_hi = uint16(speed >> 16)
		cmd.Autoneg = 0
		cmd.Duplex = ethtool.DUPLEX_FULL
		if m.Options&media.HalfDuplex != 0 {
			cmd.Duplex = ethtool.DUPLEX_HALF
		}
	}

	_, err := e.handle.CmdSet(cmd, name)
	return err
}

func (e *ethtoolMedia) Close() {
	e.handle.Close()
}
