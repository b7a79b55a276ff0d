// Package timezones offers IANA time zone identifiers as form options.
//
// Install adds a namespace of option lists to a bundle: "all" plus one list
// per region ("Europe", "America", ...), so a field declared as
// "datalist:timezones/all" or "select:timezones/Europe" resolves against it.
// Handler serves the same identifiers as searchable JSON for inputs that
// query the server while the user types.
package timezones
