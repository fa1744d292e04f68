/*
Package faq implements the keyword-scoring matcher over a static knowledge base.

A query is normalized into a set of tokens (punctuation removed, lower-cased,
split on whitespace). Every record is scored by the size of the intersection
between the tokens and its keywords. The record with the strictly greatest
score wins, so earlier records win ties. A best score of zero yields the
fallback answer.
*/
package faq
