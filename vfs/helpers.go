package vfs

import (
	"io"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

func OpenFileAndGetReader(f File) (*io.SectionReader, error) {
	if err := f.Open(); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	r, err := f.Reader()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "Cannot get file '%s' reader", f.Name())
	}
	return r, nil
}

// DirectoryGetFile resolves a slash separated path relative to d.
func DirectoryGetFile(d Directory, name string) (File, error) {
	parts := strings.Split(path.Clean(strings.Trim(name, "/")), "/")
	for _, dirName := range parts[:len(parts)-1] {
		e, err := d.GetElement(dirName)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot open directory '%s'", dirName)
		}
		sub, ok := e.(Directory)
		if !ok {
			return nil, errors.Errorf("'%s' is not a directory", dirName)
		}
		d = sub
	}

	f, err := d.GetElement(parts[len(parts)-1])
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	}
	if f.IsDirectory() {
		return nil, errors.Errorf("File '%s' is directory, not a file!", name)
	}
	return f.(File), nil
}

// FindFiles walks d and returns the sorted slash separated paths of files
// whose extension matches ext, case insensitive.
func FindFiles(d Directory, ext string) ([]string, error) {
	result := make([]string, 0, 32)
	if err := findFiles(d, "", strings.ToUpper(ext), &result); err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

func findFiles(d Directory, prefix string, ext string, result *[]string) error {
	names, err := d.List()
	if err != nil {
		return errors.Wrapf(err, "Cannot list '%s'", d.Name())
	}
	for _, name := range names {
		e, err := d.GetElement(name)
		if err != nil {
			return err
		}
		if sub, ok := e.(Directory); ok && e.IsDirectory() {
			if err := findFiles(sub, prefix+name+"/", ext, result); err != nil {
				return err
			}
		} else if strings.ToUpper(path.Ext(name)) == ext {
			*result = append(*result, prefix+name)
		}
	}
	return nil
}
