package control

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "quill://control/"

var commandTypes = []string{
	TypeSetBuffer,
	TypeSetCursor,
	TypeGetState,
	TypeNotify,
	TypeHistoryPrevious,
	TypeHistoryNext,
	TypeEditPreviousMessage,
}

type schemaSet struct {
	request  *jsonschema.Schema
	commands map[string]*jsonschema.Schema
}

var loadSchemas = sync.OnceValue(func() schemaSet {
	set, err := compileSchemas()
	if err != nil {
		// The schemas are embedded; failing to compile them is a build defect.
		panic(err)
	}
	return set
})

func compileSchemas() (schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	names := append([]string{"request"}, commandTypes...)
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return schemaSet{}, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(schemaBaseURL+name+".json", bytes.NewReader(data)); err != nil {
			return schemaSet{}, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	set := schemaSet{commands: make(map[string]*jsonschema.Schema, len(commandTypes))}
	var err error
	if set.request, err = compiler.Compile(schemaBaseURL + "request.json"); err != nil {
		return schemaSet{}, fmt.Errorf("compile request schema: %w", err)
	}
	for _, name := range commandTypes {
		s, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return schemaSet{}, fmt.Errorf("compile schema %s: %w", name, err)
		}
		set.commands[name] = s
	}
	return set, nil
}

func requestSchema() *jsonschema.Schema { return loadSchemas().request }

func commandSchema(typ string) (*jsonschema.Schema, bool) {
	s, ok := loadSchemas().commands[typ]
	return s, ok
}
