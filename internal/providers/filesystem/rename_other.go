//go:build !linux

package filesystem

func renameNoReplace(oldPath, newPath string) error {
	return errNoAtomicRename
}
