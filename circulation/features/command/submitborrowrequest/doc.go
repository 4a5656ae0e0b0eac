// Package submitborrowrequest implements the Submit Borrow Request use case.
//
// A patron asks for one or more items. Items with effective availability (available units
// minus the Pending reservations of other patrons) get a unit held for the request; all
// other items fall back to an auto-reservation that is served before organic reservations
// of the same age. The request, the held units and the auto-reservations are appended in
// one atomic write across the patron and every item involved.
package submitborrowrequest
