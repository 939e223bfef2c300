package browser

import "fmt"

// refTable maps short snapshot-scoped ref ids (e.g. "e7") to locator strings.
// The table is rebuilt from scratch on every snapshot, so refs from an earlier
// snapshot fail resolution instead of silently hitting stale elements.
type refTable struct {
	locators map[string]string
	next     int
}

func newRefTable() *refTable {
	return &refTable{locators: make(map[string]string), next: 1}
}

// reset drops all refs and restarts numbering at e1.
func (t *refTable) reset() {
	t.locators = make(map[string]string)
	t.next = 1
}

// assign issues the next ref id for the given locator.
func (t *refTable) assign(locator string) string {
	ref := fmt.Sprintf("e%d", t.next)
	t.next++
	t.locators[ref] = locator
	return ref
}

// resolve returns the locator behind a ref issued by the current snapshot.
func (t *refTable) resolve(ref string) (string, error) {
	loc, ok := t.locators[ref]
	if !ok {
		return "", &RefNotFoundError{Ref: ref}
	}
	return loc, nil
}

func (t *refTable) size() int { return len(t.locators) }
