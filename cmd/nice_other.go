//go:build !linux

package cmd

import "github.com/sirupsen/logrus"

func setNiceness(n int) error {
	logrus.Debugf("Niceness %d ignored on this platform", n)
	return nil
}
