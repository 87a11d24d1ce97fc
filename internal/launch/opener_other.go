//go:build !windows && !darwin

package launch

func openArgs(target string) (string, []string) {
	return "xdg-open", []string{target}
}
