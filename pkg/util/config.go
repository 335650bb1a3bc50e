package util

// PrefixConfig prepends prefix and a dot to option, unless prefix is empty.
func PrefixConfig(prefix string, option string) string {
	if len(prefix) > 0 {
		return prefix + "." + option
	}
	return option
}
