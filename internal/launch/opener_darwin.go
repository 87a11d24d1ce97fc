//go:build darwin

package launch

func openArgs(target string) (string, []string) {
	return "open", []string{target}
}
