package token

// Kind represents the category of a source token.
type Kind uint16

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Equal is '='.
	Equal
	Comma
	Star
	LSquare
	RSquare
	LBrace
	RBrace
	Less
	Greater
	LParen
	RParen
	// Exclaim is a bare '!' that starts a metadata node or reference.
	Exclaim
	// DotDotDot is the varargs marker.
	DotDotDot

	// GlobalVar is @name or @"quoted name"; Text holds the unescaped name.
	GlobalVar
	// GlobalID is @N; Text holds the digits.
	GlobalID
	// LocalVar is %name or %"quoted name".
	LocalVar
	// LocalVarID is %N.
	LocalVarID
	// LabelStr is a block label "name:"; the colon is not part of Text.
	LabelStr
	// LabelID is a numeric block label "N:".
	LabelID
	// MetadataVar is !name (named metadata or an attachment kind).
	MetadataVar
	// AttrGrpID is #N.
	AttrGrpID
	// StringConstant is a double quoted string with escapes already decoded.
	StringConstant
	// APSInt is an integer literal, possibly negative.
	APSInt
	// APFloat is a floating point literal in decimal or hexadecimal form.
	APFloat
	// Type is a primitive type name (i32, void, float, label, metadata, ...).
	Type

	keywordBeg

	// top-level entities
	KwDeclare      // declare
	KwDefine       // define
	KwGlobal       // global
	KwConstant     // constant
	KwAlias        // alias
	KwType         // type
	KwOpaque       // opaque
	KwModule       // module
	KwAsm          // asm
	KwTarget       // target
	KwTriple       // triple
	KwDatalayout   // datalayout
	KwDeplibs      // deplibs
	KwAttributes   // attributes
	KwSideeffect   // sideeffect
	KwAlignstack   // alignstack
	KwInteldialect // inteldialect

	// linkage
	KwPrivate             // private
	KwLinkerPrivate       // linker_private
	KwLinkerPrivateWeak   // linker_private_weak
	KwInternal            // internal
	KwWeak                // weak
	KwWeakOdr             // weak_odr
	KwLinkonce            // linkonce
	KwLinkonceOdr         // linkonce_odr
	KwLinkonceOdrAutoHide // linkonce_odr_auto_hide
	KwAvailableExternally // available_externally
	KwAppending           // appending
	KwDllexport           // dllexport
	KwCommon              // common
	KwDllimport           // dllimport
	KwExternWeak          // extern_weak
	KwExternal            // external

	// visibility and storage
	KwDefault               // default
	KwHidden                // hidden
	KwProtected             // protected
	KwThreadLocal           // thread_local
	KwLocaldynamic          // localdynamic
	KwInitialexec           // initialexec
	KwLocalexec             // localexec
	KwUnnamedAddr           // unnamed_addr
	KwExternallyInitialized // externally_initialized
	KwAddrspace             // addrspace
	KwSection               // section
	KwAlign                 // align
	KwGc                    // gc

	// parameter attributes
	KwZeroext   // zeroext
	KwSignext   // signext
	KwInreg     // inreg
	KwByval     // byval
	KwSret      // sret
	KwNest      // nest
	KwNoalias   // noalias
	KwNocapture // nocapture
	KwReadnone  // readnone
	KwReadonly  // readonly
	KwReturned  // returned

	// function attributes
	KwAlwaysinline    // alwaysinline
	KwBuiltin         // builtin
	KwCold            // cold
	KwInlinehint      // inlinehint
	KwMinsize         // minsize
	KwNaked           // naked
	KwNobuiltin       // nobuiltin
	KwNoduplicate     // noduplicate
	KwNoimplicitfloat // noimplicitfloat
	KwNoinline        // noinline
	KwNonlazybind     // nonlazybind
	KwNoredzone       // noredzone
	KwNoreturn        // noreturn
	KwNounwind        // nounwind
	KwOptsize         // optsize
	KwReturnsTwice    // returns_twice
	KwSsp             // ssp
	KwSspreq          // sspreq
	KwSspstrong       // sspstrong
	KwSanitizeAddress // sanitize_address
	KwSanitizeThread  // sanitize_thread
	KwSanitizeMemory  // sanitize_memory
	KwUwtable         // uwtable

	// calling conventions
	KwCcc           // ccc
	KwFastcc        // fastcc
	KwColdcc        // coldcc
	KwX86Stdcallcc  // x86_stdcallcc
	KwX86Fastcallcc // x86_fastcallcc
	KwX86Thiscallcc // x86_thiscallcc
	KwArmApcscc     // arm_apcscc
	KwArmAapcscc    // arm_aapcscc
	KwArmAapcsVfpcc // arm_aapcs_vfpcc
	KwMsp430Intrcc  // msp430_intrcc
	KwPtxKernel     // ptx_kernel
	KwPtxDevice     // ptx_device
	KwSpirKernel    // spir_kernel
	KwSpirFunc      // spir_func
	KwIntelOclBicc  // intel_ocl_bicc
	KwX8664Sysvcc   // x86_64_sysvcc
	KwX8664Win64cc  // x86_64_win64cc
	KwCc            // cc

	// constants
	KwTrue            // true
	KwFalse           // false
	KwNull            // null
	KwUndef           // undef
	KwZeroinitializer // zeroinitializer
	KwC               // c
	KwBlockaddress    // blockaddress
	KwTo              // to
	KwX               // x

	// instruction flags
	KwNuw          // nuw
	KwNsw          // nsw
	KwExact        // exact
	KwInbounds     // inbounds
	KwTail         // tail
	KwVolatile     // volatile
	KwAtomic       // atomic
	KwSinglethread // singlethread
	KwUnordered    // unordered
	KwMonotonic    // monotonic
	KwAcquire      // acquire
	KwRelease      // release
	KwAcqRel       // acq_rel
	KwSeqCst       // seq_cst
	KwNnan         // nnan
	KwNinf         // ninf
	KwNsz          // nsz
	KwArcp         // arcp
	KwFast         // fast

	// comparison predicates
	KwEq  // eq
	KwNe  // ne
	KwSlt // slt
	KwSgt // sgt
	KwSle // sle
	KwSge // sge
	KwUlt // ult
	KwUgt // ugt
	KwUle // ule
	KwUge // uge
	KwOeq // oeq
	KwOne // one
	KwOlt // olt
	KwOgt // ogt
	KwOle // ole
	KwOge // oge
	KwOrd // ord
	KwUno // uno
	KwUeq // ueq
	KwUne // une

	// opcodes
	KwAdd            // add
	KwFadd           // fadd
	KwSub            // sub
	KwFsub           // fsub
	KwMul            // mul
	KwFmul           // fmul
	KwUdiv           // udiv
	KwSdiv           // sdiv
	KwFdiv           // fdiv
	KwUrem           // urem
	KwSrem           // srem
	KwFrem           // frem
	KwShl            // shl
	KwLshr           // lshr
	KwAshr           // ashr
	KwAnd            // and
	KwOr             // or
	KwXor            // xor
	KwIcmp           // icmp
	KwFcmp           // fcmp
	KwPhi            // phi
	KwCall           // call
	KwTrunc          // trunc
	KwZext           // zext
	KwSext           // sext
	KwFptrunc        // fptrunc
	KwFpext          // fpext
	KwUitofp         // uitofp
	KwSitofp         // sitofp
	KwFptoui         // fptoui
	KwFptosi         // fptosi
	KwInttoptr       // inttoptr
	KwPtrtoint       // ptrtoint
	KwBitcast        // bitcast
	KwSelect         // select
	KwVaArg          // va_arg
	KwRet            // ret
	KwBr             // br
	KwSwitch         // switch
	KwIndirectbr     // indirectbr
	KwInvoke         // invoke
	KwResume         // resume
	KwUnreachable    // unreachable
	KwAlloca         // alloca
	KwLoad           // load
	KwStore          // store
	KwFence          // fence
	KwCmpxchg        // cmpxchg
	KwAtomicrmw      // atomicrmw
	KwGetelementptr  // getelementptr
	KwExtractelement // extractelement
	KwInsertelement  // insertelement
	KwShufflevector  // shufflevector
	KwExtractvalue   // extractvalue
	KwInsertvalue    // insertvalue
	KwLandingpad     // landingpad

	// atomicrmw operations
	KwXchg // xchg
	KwNand // nand
	KwMax  // max
	KwMin  // min
	KwUmax // umax
	KwUmin // umin

	// landingpad clauses
	KwPersonality // personality
	KwCleanup     // cleanup
	KwCatch       // catch
	KwFilter      // filter
	KwUnwind      // unwind

	keywordEnd
)
