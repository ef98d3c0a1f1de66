// Package script reads action scripts (*.dact): a line-oriented record of
// the calls a comment parser makes into sema.TreeBuilder, grouped under
// declaration headers.
//
//	decl function name=copy params=dst,src,n
//	comment
//	param
//	name cnt
//	para
//	text "element count"
//	endpara
//	finish
//	end
package script
