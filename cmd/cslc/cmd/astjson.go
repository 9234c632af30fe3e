package cmd

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/flipboards/cslc/internal/ast"
)

// astJSON renders node as a JSON document for --dump-ast-json. ast.Node
// carries no json tags (it is a tagged variant, not a per-kind struct), so
// the tree is built path-by-path with sjson rather than json.Marshal.
func astJSON(node *ast.Node) (string, error) {
	json, err := nodeJSON("", node)
	if err != nil {
		return "", err
	}
	return json, nil
}

func nodeJSON(json string, node *ast.Node) (string, error) {
	var err error
	json, err = sjson.Set(json, "kind", node.Kind.String())
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "line", node.Pos.Line)
	if err != nil {
		return "", err
	}
	json, err = sjson.Set(json, "column", node.Pos.Column)
	if err != nil {
		return "", err
	}

	switch node.Kind {
	case ast.Val:
		json, err = sjson.Set(json, "value", fmt.Sprint(node.Value))
	case ast.Name:
		json, err = sjson.Set(json, "ident", node.Ident)
	case ast.Op:
		json, err = sjson.Set(json, "operator", node.Operator.String())
	case ast.TypeName:
		json, err = sjson.Set(json, "valtype", node.ValType.String())
	case ast.Decl:
		json, err = sjson.Set(json, "declkind", fmt.Sprint(node.DeclKind))
	case ast.Ctrl:
		json, err = sjson.Set(json, "ctrl", fmt.Sprint(node.Ctrl))
	}
	if err != nil {
		return "", err
	}

	if len(node.Children) == 0 {
		return json, nil
	}
	json, err = sjson.SetRaw(json, "children", "[]")
	if err != nil {
		return "", err
	}
	for i, child := range node.Children {
		childJSON, err := nodeJSON("", child)
		if err != nil {
			return "", err
		}
		json, err = sjson.SetRaw(json, fmt.Sprintf("children.%d", i), childJSON)
		if err != nil {
			return "", err
		}
	}
	return json, nil
}
