package mutex

import (
	"gopkg.in/yaml.v3"

	warperrors "github.com/mirkobrombin/go-lockbox/v1/errors"
	"github.com/mirkobrombin/go-lockbox/v1/metrics"
)

var (
	_ yaml.Marshaler   = Mutex[struct{}]{}
	_ yaml.Unmarshaler = (*Mutex[struct{}])(nil)
)

// MarshalYAML implements [yaml.Marshaler]. The inner value is encoded into
// a node while the lock is held, so the returned node does not alias the
// guarded value.
func (m Mutex[T]) MarshalYAML() (out any, err error) {
	defer func() { metrics.ObserveEncode(formatYAML, err) }()
	var inner yaml.Node
	if err := m.withInner(func(v *T) error {
		return inner.Encode(v)
	}); err != nil {
		return nil, err
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: fieldInner},
			&inner,
		},
	}, nil
}

// UnmarshalYAML implements [yaml.Unmarshaler].
func (m *Mutex[T]) UnmarshalYAML(node *yaml.Node) (err error) {
	defer func() { metrics.ObserveDecode(formatYAML, err) }()
	for node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return warperrors.InvalidType(yamlKindName(node), expecting)
	}

	var (
		inner T
		seen  bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value != fieldInner {
			continue
		}
		if seen {
			return warperrors.DuplicateField(recordName, fieldInner)
		}
		if err := val.Decode(&inner); err != nil {
			return err
		}
		seen = true
	}
	if !seen {
		return warperrors.MissingField(recordName, fieldInner)
	}
	m.replace(inner)
	return nil
}

func yamlKindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return "null"
		}
		return "scalar " + n.ShortTag()
	case yaml.DocumentNode:
		return "document"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}
