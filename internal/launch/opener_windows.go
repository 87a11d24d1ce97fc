//go:build windows

package launch

func openArgs(target string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", target}
}
