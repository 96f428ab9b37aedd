//go:build linux

package cmd

import (
	"runtime"

	"github.com/vishvananda/netns"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
)

// enterNamespace switches the calling OS thread into the named network
// namespace. The returned function switches back. Everything in between
// must stay on this goroutine.
func enterNamespace(name string) (func(), error) {
	runtime.LockOSThread()

	orig, err := netns.Get()
	if err != nil {
		runtime.UnlockOSThread()
		return nil, errors.Wrap(err, errors.KindOperation, "failed to get current network namespace")
	}

	target, err := netns.GetFromName(name)
	if err != nil {
		orig.Close()
		runtime.UnlockOSThread()
		return nil, errors.Wrapf(err, errors.KindNotFound, "network namespace %s", name)
	}
	defer target.Close()

	if err := netns.Set(target); err != nil {
		orig.Close()
		runtime.UnlockOSThread()
		return nil, errors.Wrapf(err, errors.KindOperation, "failed to enter network namespace %s", name)
	}
	logging.WithComponent("cmd").Debug("entered network namespace", "netns", name)

	return func() {
		if err := netns.Set(orig); err != nil {
			logging.WithComponent("cmd").Warn("failed to return to original network namespace", "error", err)
		}
		orig.Close()
		runtime.UnlockOSThread()
	}, nil
}
