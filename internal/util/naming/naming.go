package naming

import "fmt"

// Volume returns the name of the index-th additional disk of a node.
func Volume(node string, index int) string {
	return fmt.Sprintf("%s-disk-%d", node, index)
}

// NextVolume returns the first volume name for node that is not in taken.
func NextVolume(node string, taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, name := range taken {
		used[name] = true
	}
	for i := 1; ; i++ {
		if name := Volume(node, i); !used[name] {
			return name
		}
	}
}
