package cmd

import (
	"fmt"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/netif"
)

// runRoute handles
//
//	route <if>
//	route <if> add default <gateway>
//	route <if> del default [<gateway>|<family>]
func (a *App) runRoute(args []string) int {
	if len(args) == 0 {
		Usage(a.Stderr)
		return 1
	}
	name := args[0]
	if err := netif.ValidateName(name); err != nil {
		return a.fail(err)
	}
	iface := a.roster.Interface(name)
	if !iface.Exists() {
		return a.fail(errors.Errorf(errors.KindNotFound, "%s: interface not found", name))
	}

	if len(args) == 1 {
		routes, err := iface.Routes(netaddr.Unspecified)
		if err != nil {
			return a.fail(err)
		}
		for _, r := range routes {
			fmt.Fprintln(a.Stdout, formatRoute(r))
		}
		return 0
	}

	if len(args) < 3 || args[2] != "default" {
		Usage(a.Stderr)
		return 1
	}

	switch args[1] {
	case "add":
		if len(args) != 4 {
			Usage(a.Stderr)
			return 1
		}
		gw, err := parseGateway(args[3])
		if err != nil {
			return a.fail(err)
		}
		a.markMutated()
		if err := iface.AddDefaultRoute(gw); err != nil {
			return a.fail(err)
		}

	case "del", "delete":
		family := netaddr.INET
		if len(args) == 4 {
			if f := netaddr.ParseFamily(args[3]); f != netaddr.Unspecified {
				family = f
			} else {
				gw, err := parseGateway(args[3])
				if err != nil {
					return a.fail(err)
				}
				family = gw.Family
			}
		} else if len(args) > 4 {
			Usage(a.Stderr)
			return 1
		}
		a.markMutated()
		if err := iface.RemoveDefaultRoute(family); err != nil {
			return a.fail(err)
		}

	default:
		Usage(a.Stderr)
		return 1
	}
	return 0
}

func parseGateway(text string) (netaddr.Address, error) {
	family := netaddr.Unspecified
	gw, ok := netaddr.Parse(&family, text)
	if !ok || family == netaddr.Link {
		return netaddr.Address{}, errors.Errorf(errors.KindParse, "invalid gateway %q", text)
	}
	return gw, nil
}

func formatRoute(r netif.Route) string {
	dst := "default"
	if !r.IsDefault() {
		dst = fmt.Sprintf("%s/%d", r.Destination, r.Mask.PrefixLength())
	}
	line := fmt.Sprintf("%s %s", r.Family(), dst)
	if !r.Gateway.IsEmpty() {
		line += " via " + r.Gateway.String()
	}
	if r.MTU > 0 {
		line += fmt.Sprintf(" mtu %d", r.MTU)
	}
	return line
}
