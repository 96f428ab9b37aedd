// Package netif is the interface request layer.
//
// # Overview
//
// An [Interface] names one network interface and issues requests against it:
// flags, MTU, metric, media, link-level address, statistics, address aliases
// and routes. Every request opens a [Channel] from an [Opener], performs its
// work and closes the channel before returning, on success and failure alike.
// Nothing is cached; the kernel's interface table is read fresh each time.
//
// # Backends
//
//   - [KernelOpener]: Linux, via netlink for links, addresses and routes, an
//     ioctl socket for the flag word and metric, and ethtool for media.
//   - [Sim]: stateful in-memory interface table used for dry runs and tests.
//     It records every mutation as an "ip ..." style line.
//   - [MockChannel]: testify mock.
//
// Whole-interface operations (list, create, destroy) live on [Roster].
package netif
