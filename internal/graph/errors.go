package graph

import (
	"strconv"

	"bookgraph/internal/apperr"

	graphql "github.com/graph-gophers/graphql-go"
)

// publicError converts err into the *apperr.Error that graph-gophers will
// render, so its code lands in the error's extensions. Upstream causes are
// dropped from the message and only logged.
func publicError(err error) error {
	if err == nil {
		return nil
	}
	e := apperr.From(err)
	if e.Code == apperr.CodeUpstreamFailure {
		return &apperr.Error{Code: e.Code, Message: "upstream failure"}
	}
	return e
}

func parseID(id graphql.ID) (int, error) {
	n, err := strconv.Atoi(string(id))
	if err != nil || n <= 0 {
		return 0, apperr.InvalidArgumentf("invalid id %q", string(id))
	}
	return n, nil
}

func parseIDs(ids []graphql.ID) ([]int, error) {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		n, err := parseID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func toID(n int) graphql.ID {
	return graphql.ID(strconv.Itoa(n))
}
