package graph

import "bookgraph/internal/datasource"

var (
	authorOrders = map[string]string{
		"NAME_ASC":  "name_asc",
		"NAME_DESC": "name_desc",
	}
	bookOrders = map[string]string{
		"TITLE_ASC":  "title_asc",
		"TITLE_DESC": "title_desc",
	}
	libraryOrders = map[string]string{
		"ADDED_ON_ASC":  "createdAt_asc",
		"ADDED_ON_DESC": "createdAt_desc",
	}
	reviewOrders = map[string]string{
		"REVIEWED_ON_ASC":  "createdAt_asc",
		"REVIEWED_ON_DESC": "createdAt_desc",
	}
)

// pageArgs are the arguments shared by every paginated field. OrderBy always
// carries a value since the schema gives it a default.
type pageArgs struct {
	Limit   *int32
	Page    *int32
	OrderBy string
}

// params converts the arguments, translating the OrderBy enum through
// orders. An empty or unknown enum leaves the operation's default order in
// place.
func (a pageArgs) params(orders map[string]string) datasource.ListParams {
	var p datasource.ListParams
	if a.Limit != nil {
		p.Limit = int(*a.Limit)
	}
	if a.Page != nil {
		p.Page = int(*a.Page)
	}
	p.OrderBy = orders[a.OrderBy]
	return p
}

type searchArgs struct {
	Exact   bool
	Query   string
	OrderBy string
}

func (a searchArgs) params() datasource.SearchParams {
	p := datasource.SearchParams{Query: a.Query, Exact: a.Exact, OrderBy: datasource.ResultAsc}
	if a.OrderBy == string(datasource.ResultDesc) {
		p.OrderBy = datasource.ResultDesc
	}
	return p
}
