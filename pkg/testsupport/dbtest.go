package testsupport

import "strings"

var dsnReplacer = strings.NewReplacer("/", "_", " ", "_", "?", "_", "#", "_")

// MemoryDSN returns a shared-cache in-memory sqlite DSN private to name,
// typically t.Name(), so parallel tests never see each other's tables.
func MemoryDSN(name string) string {
	return "file:" + dsnReplacer.Replace(name) + "?mode=memory&cache=shared&_fk=1"
}
