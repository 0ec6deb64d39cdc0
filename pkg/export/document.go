package export

// Field is a labelled value printed in a summary block.
type Field struct {
	Label string
	Value string
}

// Section is a titled table.
type Section struct {
	Heading string
	Dataset Dataset
}

// Block is a titled group of free-text fields, used for long-form entries.
type Block struct {
	Heading string
	Fields  []Field
}

// Document is the renderer-neutral shape of an exported session.
type Document struct {
	Title    string
	Subtitle string
	Summary  []Field
	Sections []Section
	Blocks   []Block
}
