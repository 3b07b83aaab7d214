// Package asm assembles class files from YAML descriptions.
//
// It serves the helper template and test fixtures, so it covers the subset
// of the format those need: a constant pool built on demand, fields,
// methods with code and exception tables, SourceFile and raw attributes.
// Stack map frames are not computed; descriptions targeting version 50 and
// later must not branch or must supply the frames as a raw attribute.
//
// Code is written one instruction per line:
//
//	start:
//	  aload_0
//	  ifnull done
//	  ldc string:javax/persistence/Entity
//	  invokestatic java/lang/Class.forName(Ljava/lang/String;)Ljava/lang/Class;
//	  getstatic a/B.MAPPINGS:Ljava/util/Map;
//	  tableswitch 0 dflt case0 case1
//	  lookupswitch dflt 1:one 10:ten
//	  wide iinc 300 -1
//	done:
//
// Loadable constants are written as string:, class:, int:, long:,
// methodtype: or handle:KIND:REF where KIND is a reference kind mnemonic
// such as invokestatic. Lines starting with # are comments.
package asm
