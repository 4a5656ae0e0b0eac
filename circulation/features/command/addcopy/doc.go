// Package addcopy implements the Add Item Copy use case.
//
// A new physical copy enters circulation: one unit is received into the available bucket and
// the copy is put on the shelf. The first copy makes the item Active. Adding the same copy
// twice is a no-op; archived items cannot receive copies.
package addcopy
