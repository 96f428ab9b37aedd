//go:build !linux

package cmd

import "grimm.is/ifconf/internal/errors"

func enterNamespace(name string) (func(), error) {
	return nil, errors.Errorf(errors.KindUnsupported, "network namespaces are not supported on this platform (%s)", name)
}
