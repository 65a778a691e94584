// Package apecrunch implements an exact-arithmetic calculator engine.
//
// The engine tokenizes and parses arithmetic expressions with variables,
// evaluates them over exact rationals, and records every computed entry in a
// persistent, versioned history (package history). Results that cannot be
// written finitely in decimal carry a precision-loss flag which survives
// arithmetic and persistence.
//
// The syntax is intended to be close to math you'd write in your notes.
// "2 x y" is a multiplication of three terms; "-2^2^n" is "(-2)^(2^n)"
// because unary minus binds tighter than exponentiation; "3√8" is the cube
// root of 8, and "x = 2+2" assigns and displays 4.
//
// Parse converts input text to an expression tree. A Context, which holds the
// variable table, evaluates trees to Numbers. Engine ties parsing, evaluation,
// and history together behind the operations a front-end needs.
package apecrunch
