// Package report renders interface state for humans and machines.
//
// Gather reads one or all interfaces through netif into Listing values;
// Render writes them as the classic ifconfig text block, JSON, or YAML.
package report
