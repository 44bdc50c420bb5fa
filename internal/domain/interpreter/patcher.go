package interpreter

import (
	"path/filepath"

	"gopkg.in/ini.v1"
)

// patcherDataDir is the directory patcher tools ship next to their
// executable; its namespaces.ini names the available change sets.
const patcherDataDir = "tslpatchdata"

// patcherNamespaceArgs reads tslpatchdata/namespaces.ini next to the
// patcher executable and returns the first namespace's ini name as an
// extra argument so the tool patches the right change set. A missing or
// unreadable manifest yields no extra arguments; the tool then runs with
// its defaults.
func (in *Interpreter) patcherNamespaceArgs(exe string) []string {
	manifest := filepath.Join(filepath.Dir(exe), patcherDataDir, "namespaces.ini")
	if !in.provider.FileExists(manifest) {
		return nil
	}
	data, err := in.provider.ReadAllBytes(manifest)
	if err != nil {
		return nil
	}
	file, err := ini.Load(data)
	if err != nil {
		return nil
	}
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		if name := section.Key("IniName").String(); name != "" {
			return []string{name}
		}
	}
	return nil
}
