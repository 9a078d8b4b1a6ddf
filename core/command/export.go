package command

// Save writes all correspondences to the export sinks without draining the
// unsaved queue.
type Save struct{}

func (c *Save) CommandName() string {
	return "Save"
}

// Autosave performs what the periodic autosave timer does: if anything is
// unsaved, write it and drain the written records on success.
type Autosave struct{}

func (c *Autosave) CommandName() string {
	return "Autosave"
}
