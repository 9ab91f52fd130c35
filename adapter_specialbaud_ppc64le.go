//go:build linux && ppc64le

package serial

func setSpecialBaudrateLinux(fd int, speed uint32) error {
	return newError(KindPlatformConstraint, "configure_data")
}
