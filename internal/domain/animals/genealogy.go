package animals

import (
	"context"
	"errors"
	"time"
)

// maxGenealogyDepth limita la recursión en ambas direcciones. La asignación
// de padres se valida al escribir, pero el builder no confía en eso: con el
// cap y el set de visitados un ciclo introducido por fuera termina el
// recorrido en vez de divergir.
const maxGenealogyDepth = 16

// GenealogyNode es la vista de árbol de un animal. Los subárboles de
// ancestros solo pueblan Mother/Father; los de descendientes solo Children.
// El nodo raíz puebla ambos.
type GenealogyNode struct {
	ID        string
	Name      string
	VisualTag string
	CUIA      string
	Sex       Sex
	BirthDate *time.Time

	Mother   *GenealogyNode
	Father   *GenealogyNode
	Children []GenealogyNode
}

// Genealogy reconstruye el árbol genealógico desde las FKs planas
// (mother_id / father_id), un lookup por id a la vez. Los hijos se resuelven
// con el reverse lookup del repo.
func (s *Service) Genealogy(ctx context.Context, id string) (GenealogyNode, error) {
	root, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return GenealogyNode{}, ErrNotFound
	}

	node := toGenealogyNode(root)

	up := map[string]struct{}{root.ID: {}}
	node.Mother, err = s.buildAncestor(ctx, root.MotherID, 1, up)
	if err != nil {
		return GenealogyNode{}, err
	}
	node.Father, err = s.buildAncestor(ctx, root.FatherID, 1, up)
	if err != nil {
		return GenealogyNode{}, err
	}

	down := map[string]struct{}{root.ID: {}}
	node.Children, err = s.buildDescendants(ctx, root.ID, 1, down)
	if err != nil {
		return GenealogyNode{}, err
	}

	return node, nil
}

func (s *Service) buildAncestor(ctx context.Context, parentID *string, depth int, visited map[string]struct{}) (*GenealogyNode, error) {
	if parentID == nil || *parentID == "" {
		return nil, nil
	}
	if depth > maxGenealogyDepth {
		return nil, nil
	}
	if _, seen := visited[*parentID]; seen {
		return nil, nil
	}

	parent, err := s.repo.GetByID(ctx, *parentID)
	if errors.Is(err, ErrNotFound) {
		// FK colgante: el padre fue retirado del storage. Cortamos la rama.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	visited[parent.ID] = struct{}{}

	node := toGenealogyNode(parent)
	node.Mother, err = s.buildAncestor(ctx, parent.MotherID, depth+1, visited)
	if err != nil {
		return nil, err
	}
	node.Father, err = s.buildAncestor(ctx, parent.FatherID, depth+1, visited)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *Service) buildDescendants(ctx context.Context, parentID string, depth int, visited map[string]struct{}) ([]GenealogyNode, error) {
	if depth > maxGenealogyDepth {
		return []GenealogyNode{}, nil
	}

	children, err := s.repo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	out := make([]GenealogyNode, 0, len(children))
	for _, c := range children {
		if _, seen := visited[c.ID]; seen {
			continue
		}
		visited[c.ID] = struct{}{}

		node := toGenealogyNode(c)
		node.Children, err = s.buildDescendants(ctx, c.ID, depth+1, visited)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func toGenealogyNode(a Animal) GenealogyNode {
	return GenealogyNode{
		ID:        a.ID,
		Name:      a.Name,
		VisualTag: a.VisualTag,
		CUIA:      a.CUIA,
		Sex:       a.Sex,
		BirthDate: a.BirthDate,
		Children:  []GenealogyNode{},
	}
}
