// Package autoconf is the auto-configuration service.
//
// A long-running Server accepts requests over a unix socket (net/rpc) and
// acquires addresses for an interface: DHCPv4 for inet and router
// solicitation plus SLAAC for inet6. Leases are applied through netif and
// renewed in the background until they are superseded or the server stops.
//
// The Client side implements netif.AutoConfigurer and is what the
// "auto-config" keyword ends up calling.
package autoconf
