// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

/*
Package lcf provides a parser for LCF, an indentation-structured configuration
format. A document parses into a tree of typed values, and keys can be marked
hidden to flag them as sensitive.

The parser is deliberately permissive: it never reports an error. Lines it
does not recognize are skipped and malformed structured values are kept as
strings, so callers always get a best-effort tree.

Syntax

A document is Unicode text encoded in UTF-8, read line by line. Tab characters
are expanded to four spaces before a line's indentation is measured. Lines that
contain only whitespace are ignored.

A property is a key and value written on a single line, separated by two
greater-than signs:

	key>>value

Only the first ">>" separates the key from the value; any later ones are part
of the value. Whitespace around the key and the value is ignored. A line that
is not a section header and contains no ">>" is skipped.

A section is started by a line beginning with two colons followed by its name:

	::server
	  host>>localhost
	  ::tls
	    enabled>>true

A section contains the lines that follow it which are indented further than its
header. A header or property closes every open section whose header is indented
at least as far as it is, so two headers at the same indentation are siblings:

	::a
	  x>>1
	::b
	  y>>2

parses to {a: {x: 1}, b: {y: 2}}. Reopening a section with the same name at
the same place in the tree adds to it rather than replacing it.

Hidden keys

A key that starts with a dollar sign ('$') is hidden. The dollar sign is not
part of the stored key. Its path, the enclosing section names and the key
joined with colons, is recorded separately:

	::db
	  $password>>hunter2

stores {db: {password: "hunter2"}} and records the hidden path "db:password".

Values

Values are typed by inspecting the trimmed text; the first matching rule wins:

	(empty)            the empty string
	true, FALSE, ...   a boolean, in any letter case
	42, -3.5           a number; exponents and forms like ".5" are strings
	[1, 2], {"a": 1}   a list or map, if the text is valid JSON
	anything else      the text as a string

Paths

Values are looked up with colon-separated paths like "server:tls:enabled".
Empty segments are ignored.
*/
package lcf
