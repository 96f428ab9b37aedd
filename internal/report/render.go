package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/netaddr"
	"grimm.is/ifconf/internal/wireless"
)

// Formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes listings in format.
func Render(w io.Writer, listings []Listing, format string, st Styler) error {
	switch format {
	case FormatText, "":
		for _, l := range listings {
			if err := WriteText(w, l, st); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	case FormatYAML:
		data, err := yaml.Marshal(listings)
		if err != nil {
			return errors.Wrap(err, errors.KindOperation, "failed to encode YAML")
		}
		_, err = w.Write(data)
		return err
	}
	return errors.Errorf(errors.KindUsage, "unknown output format %q", format)
}

// WriteText writes the classic ifconfig block for l, ending in a blank line.
// A missing interface prints its name and "Interface not found!" only.
func WriteText(w io.Writer, l Listing, st Styler) error {
	var b strings.Builder

	b.WriteString(st.Name(l.Name))
	if len(l.Name) < 8 {
		b.WriteByte('\t')
	} else {
		b.WriteString("\n\t")
	}

	if !l.Found {
		b.WriteString(st.Missing("Interface not found!\n"))
		_, err := io.WriteString(w, b.String())
		return err
	}

	if l.LinkError == "" {
		fmt.Fprintf(&b, "%s: %s, %s: %s\n", st.Label("Hardware type"), l.HardwareType, st.Label("Address"), l.HardwareAddress)
	} else {
		fmt.Fprintf(&b, "No link level: %s\n", l.LinkError)
	}

	if l.Media != "" {
		fmt.Fprintf(&b, "\t%s: %s\n", st.Label("Media type"), l.Media)
	}

	for n, nw := range l.Networks {
		if n == 0 {
			fmt.Fprintf(&b, "\t%s: ", st.Label("Network"))
		} else {
			b.WriteString("\t\t")
		}
		fmt.Fprintf(&b, "%s, Address: %s, %s", nw.Name, nw.Address, nw.Authentication)
		if nw.KeyMode != "" {
			fmt.Fprintf(&b, ", %s/%s", nw.KeyMode, nw.Cipher)
		}
		b.WriteByte('\n')
	}

	for _, a := range l.Addresses {
		fmt.Fprintf(&b, "\t%s addr: %s", a.Family, a.Address)
		if l.broadcast && a.Broadcast != "" {
			fmt.Fprintf(&b, ", Bcast: %s", a.Broadcast)
		}
		if a.Peer != "" {
			fmt.Fprintf(&b, ", P-t-P: %s", a.Peer)
		}
		switch a.format {
		case netaddr.FormatMask:
			fmt.Fprintf(&b, ", Mask: %s", a.Mask)
		case netaddr.FormatPrefixLength:
			fmt.Fprintf(&b, ", Prefix Length: %d", a.PrefixLength)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\t%s: %d, %s: %d", st.Label("MTU"), l.MTU, st.Label("Metric"), l.Metric)
	if len(l.Flags) > 0 {
		b.WriteByte(',')
		for _, f := range l.Flags {
			b.WriteByte(' ')
			b.WriteString(st.Flag(f))
		}
	}
	b.WriteByte('\n')

	if s := l.Stats; s != nil {
		fmt.Fprintf(&b, "\tReceive: %d packets, %d errors, %d bytes, %d mcasts, %d dropped\n",
			s.Receive.Packets, s.Receive.Errors, s.Receive.Bytes, s.Receive.Multicast, s.Receive.Dropped)
		fmt.Fprintf(&b, "\tTransmit: %d packets, %d errors, %d bytes, %d mcasts, %d dropped\n",
			s.Transmit.Packets, s.Transmit.Errors, s.Transmit.Bytes, s.Transmit.Multicast, s.Transmit.Dropped)
		fmt.Fprintf(&b, "\tCollisions: %d\n", s.Collisions)
	}

	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteScanHeader writes the column header of a network table.
func WriteScanHeader(w io.Writer, verbose bool, st Styler) {
	line := fmt.Sprintf("%-32s %-20s %s  %s", "name", "address", "signal", "auth")
	if verbose {
		line += "  key/cipher"
	}
	fmt.Fprintln(w, st.Header(line))
}

// WriteScanRow writes one network of a table. Signal is in dBm.
func WriteScanRow(w io.Writer, n wireless.Network, verbose bool) {
	fmt.Fprintf(w, "%-32s %-20s %6d  %s", n.Name, n.BSSID(), n.Signal, n.Authentication)
	if verbose && n.KeyMode != "" {
		fmt.Fprintf(w, "  %s/%s", n.KeyMode, n.Cipher)
	}
	fmt.Fprintln(w)
}

// WriteScan writes a full network table.
func WriteScan(w io.Writer, nets []wireless.Network, verbose bool, st Styler) {
	WriteScanHeader(w, verbose, st)
	for _, n := range nets {
		WriteScanRow(w, n, verbose)
	}
}
